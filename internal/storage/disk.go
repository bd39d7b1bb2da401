package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBlobNotFound is returned when a key has no content behind it.
var ErrBlobNotFound = errors.New("blob not found")

// DiskStore keeps blobs as plain files under a base directory. Keys are
// uuid-prefixed so uploads with the same name never collide.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// keyFor flattens the original name into a safe suffix; the uuid prefix
// carries the uniqueness.
func keyFor(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, string(os.PathSeparator), "_")
	if base == "" || base == "." {
		base = "upload"
	}
	return uuid.NewString() + "_" + base
}

func (d *DiskStore) path(key string) string {
	// Keys are generated by Put; reject anything trying to escape the dir.
	return filepath.Join(d.dir, filepath.Base(key))
}

func (d *DiskStore) Put(_ context.Context, name string, r io.Reader) (string, int64, error) {
	key := keyFor(name)

	f, err := os.OpenFile(d.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create blob: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(d.path(key))
		return "", 0, fmt.Errorf("write blob: %w", err)
	}
	return key, size, nil
}

func (d *DiskStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(d.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return f, nil
}

func (d *DiskStore) Delete(_ context.Context, key string) error {
	err := os.Remove(d.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrBlobNotFound
	}
	return err
}
