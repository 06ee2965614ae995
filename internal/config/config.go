// Package config provides runtime configuration values for shopsync.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/shopsync/internal/blob"
	"github.com/roach88/shopsync/internal/store"
)

// Storage drivers accepted by OpenMedium.
const (
	DriverMemory     = "memory"
	DriverSQLite     = "sqlite"
	DriverSQLitePure = "sqlite-pure"
	DriverPostgres   = "postgres"
)

// DefaultMemoryQuota mirrors the usual per-origin browser storage budget.
const DefaultMemoryQuota = 5 << 20

// Config holds storage, snapshot and logging knobs.
type Config struct {
	Driver      string
	DSN         string
	MemoryQuota int
	Blob        blob.Config
	LogLevel    string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		Driver:      strings.ToLower(getenv("SHOPSYNC_DRIVER", DriverSQLite)),
		DSN:         getenv("SHOPSYNC_DB", "shopsync.db"),
		MemoryQuota: atoienv("SHOPSYNC_MEMORY_QUOTA", DefaultMemoryQuota),
		Blob: blob.Config{
			Driver: blob.Driver(strings.ToLower(getenv("SHOPSYNC_BLOB_DRIVER", string(blob.DriverFilesystem)))),
			FSRoot: getenv("SHOPSYNC_BLOB_FS_ROOT", "./blobdata"),
			S3: blob.S3Config{
				Bucket:          getenv("SHOPSYNC_BLOB_S3_BUCKET", ""),
				Region:          getenv("SHOPSYNC_BLOB_S3_REGION", "us-east-1"),
				Endpoint:        getenv("SHOPSYNC_BLOB_S3_ENDPOINT", ""),
				PathStyle:       boolenv("SHOPSYNC_BLOB_S3_PATH_STYLE", false),
				AccessKeyID:     getenv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getenv("AWS_SECRET_ACCESS_KEY", ""),
				SessionToken:    getenv("AWS_SESSION_TOKEN", ""),
			},
		},
		LogLevel: getenv("LOG_LEVEL", "warn"),
	}
}

// OpenMedium opens the storage medium named by cfg.Driver.
func OpenMedium(ctx context.Context, cfg Config) (store.Medium, error) {
	switch cfg.Driver {
	case DriverMemory:
		return store.NewMemory(cfg.MemoryQuota), nil
	case "", DriverSQLite:
		return store.OpenSQLite(cfg.DSN)
	case DriverSQLitePure:
		return store.OpenSQLitePure(cfg.DSN)
	case DriverPostgres:
		return store.OpenPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q (want memory, sqlite, sqlite-pure or postgres)", cfg.Driver)
	}
}
