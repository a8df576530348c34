// Package blob stores trip documents and gear photos in an S3-compatible
// bucket, keyed by opaque string paths.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("blob: not found")

// Store is the key-based blob interface the rest of the app programs
// against. The S3 implementation backs production; the memory implementation
// backs tests.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Copy(ctx context.Context, srcKey, dstKey string) error
	Remove(ctx context.Context, keys ...string) error
	// PublicURL returns a stable URL for non-sensitive assets (gear photos).
	PublicURL(key string) string
}
