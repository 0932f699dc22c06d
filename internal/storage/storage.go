// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO,
// Cloudflare R2, AWS S3).
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the interface for writing objects and addressing them.
type ObjectStore interface {
	// Put streams data to the store under the given key.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// PresignedPutURL mints a one-time-use URL allowing a direct PUT of key,
	// valid for expiry.
	PresignedPutURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
