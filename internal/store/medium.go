package store

import (
	"context"
	"errors"
)

var (
	// ErrQuotaExceeded is returned by a quota-limited medium when a batch would
	// grow the stored bytes past the quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrClosed is returned by a medium used after Close.
	ErrClosed = errors.New("medium closed")
)

// Mutation is one change in a batch: set Key to Value, or delete Key.
type Mutation struct {
	Key    string
	Value  []byte
	Delete bool
}

// Medium is the raw key/value backend behind a Store.
type Medium interface {
	// Get returns the stored bytes for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Apply performs every mutation or none of them.
	Apply(ctx context.Context, muts []Mutation) error

	// Keys lists the stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)

	// Close releases the medium.
	Close() error
}

// Revisioner is implemented by media that count writes per key.
type Revisioner interface {
	Revision(ctx context.Context, key string) (int64, error)
}
