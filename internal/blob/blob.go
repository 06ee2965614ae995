// Package blob stores opaque documents such as collection snapshots.
//
// Drivers:
//   - fs: files under a root directory (default)
//   - s3: an S3 or MinIO bucket
//   - memory: in-process, for tests
package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Driver identifies a blob backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("blob not found")

// Info describes a stored blob.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the blob backend interface. Put overwrites an existing key.
type Store interface {
	Put(ctx context.Context, key string, data []byte) (Info, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// Config selects and configures a driver.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open builds the configured store. An empty driver means fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("blob key required")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}
