// Package storage abstracts durable byte storage for uploaded videos.
// Blobs are addressed by an opaque locator returned from Put.
package storage

import (
	"context"
	"io"
	"time"

	"match-service/config"
)

// Object is an opened blob ready for streaming. Callers own Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

type Store interface {
	// Put stores the bytes and returns the locator for later access.
	Put(ctx context.Context, r io.Reader, size int64, suggestedName string) (string, error)

	// Get opens the blob at the locator. Returns a NotFound error when
	// the blob is absent.
	Get(ctx context.Context, locator string) (*Object, error)

	SupportsSignedURLs() bool

	SignedURL(ctx context.Context, locator string, ttl time.Duration) (string, error)
}

// New selects the store driver from config.
func New(cfg *config.Config) (Store, error) {
	if cfg.Blob.Driver == "minio" {
		return NewMinioStore(cfg.Storage, cfg.Blob.Bucket, cfg.Blob.Prefix), nil
	}
	return NewLocalStore(cfg.Blob.Root)
}
