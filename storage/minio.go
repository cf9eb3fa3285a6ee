package storage

import (
	"context"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"match-service/pkg/apperror"
)

// MinioStore keeps blobs in an object-storage bucket under a key
// prefix. Download URLs are presigned against the bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioStore(client *minio.Client, bucket, prefix string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *MinioStore) Put(ctx context.Context, r io.Reader, size int64, suggestedName string) (string, error) {
	key := path.Join(s.prefix, uuid.NewString()+path.Ext(suggestedName))
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *MinioStore) Get(ctx context.Context, locator string) (*Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, locator, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	// GetObject is lazy; Stat surfaces a missing key before streaming.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, apperror.NotFound("File not found")
		}
		return nil, err
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Object{Body: obj, Size: info.Size, ContentType: contentType}, nil
}

func (s *MinioStore) SupportsSignedURLs() bool {
	return true
}

func (s *MinioStore) SignedURL(ctx context.Context, locator string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, locator, ttl, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
