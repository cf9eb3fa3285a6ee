package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"match-service/pkg/apperror"
)

const videoDir = "videos"

var ErrSignedURLsUnsupported = errors.New("local store does not support signed urls")

// LocalStore keeps blobs under <root>/videos on the local disk. The
// locator is the root-relative path with forward slashes.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, videoDir), os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStore{root: abs}, nil
}

func (s *LocalStore) Put(ctx context.Context, r io.Reader, size int64, suggestedName string) (string, error) {
	name := uuid.NewString() + filepath.Ext(suggestedName)
	rel := filepath.ToSlash(filepath.Join(videoDir, name))

	f, err := os.Create(filepath.Join(s.root, videoDir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return rel, nil
}

func (s *LocalStore) Get(ctx context.Context, locator string) (*Object, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(locator))
	// The locator is persisted server-side, but keep traversal out anyway.
	if !strings.HasPrefix(abs, s.root) {
		return nil, apperror.NotFound("File not found")
	}

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NotFound("File not found")
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(abs))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Object{Body: f, Size: info.Size(), ContentType: contentType}, nil
}

func (s *LocalStore) SupportsSignedURLs() bool {
	return false
}

func (s *LocalStore) SignedURL(ctx context.Context, locator string, ttl time.Duration) (string, error) {
	return "", ErrSignedURLsUnsupported
}
