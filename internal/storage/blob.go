// Package storage abstracts where attachment bytes live. Metadata stays
// in the database; only the raw content goes through a BlobStore.
package storage

import (
	"context"
	"io"
)

// BlobStore reads and writes attachment content by opaque key.
type BlobStore interface {
	// Put streams r into the store and returns the key for later reads.
	Put(ctx context.Context, name string, r io.Reader) (key string, size int64, err error)
	// Open returns a reader for the stored content. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
