package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/shopsync/internal/apperr"
)

// Store gives typed access to the collections held in a Medium.
type Store struct {
	medium Medium
	log    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for commit and failure events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New wraps a medium.
func New(m Medium, opts ...Option) *Store {
	s := &Store{medium: m, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Medium returns the backing medium.
func (s *Store) Medium() Medium {
	return s.medium
}

// Close closes the backing medium.
func (s *Store) Close() error {
	return s.medium.Close()
}

// Read returns the records of a collection. An absent collection is an empty,
// non-nil slice.
func Read[T any](ctx context.Context, s *Store, collection string) ([]T, error) {
	raw, ok, err := s.ReadRaw(ctx, collection)
	if err != nil {
		return nil, err
	}
	items := []T{}
	if !ok {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn("collection_decode_failed", zap.String("collection", collection), zap.Error(err))
		return nil, apperr.StorageUnavailable("decode "+collection, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// ReadRecord returns a singleton collection such as currentUser.
// found is false when the collection is absent or holds JSON null.
func ReadRecord[T any](ctx context.Context, s *Store, collection string) (rec T, found bool, err error) {
	raw, ok, err := s.ReadRaw(ctx, collection)
	if err != nil || !ok {
		return rec, false, err
	}
	var ptr *T
	if err := json.Unmarshal(raw, &ptr); err != nil {
		s.log.Warn("collection_decode_failed", zap.String("collection", collection), zap.Error(err))
		return rec, false, apperr.StorageUnavailable("decode "+collection, err)
	}
	if ptr == nil {
		return rec, false, nil
	}
	return *ptr, true, nil
}

// Write replaces a collection with items.
func Write[T any](ctx context.Context, s *Store, collection string, items []T) error {
	return Put(s.Batch(), collection, items).Commit(ctx)
}

// WriteRecord replaces a singleton collection.
func WriteRecord[T any](ctx context.Context, s *Store, collection string, rec T) error {
	return PutRecord(s.Batch(), collection, rec).Commit(ctx)
}

// Remove deletes a collection. Reads afterwards see the default empty value.
func (s *Store) Remove(ctx context.Context, collection string) error {
	return s.Batch().Delete(collection).Commit(ctx)
}

// Exists reports whether a collection has ever been written and not removed.
func (s *Store) Exists(ctx context.Context, collection string) (bool, error) {
	_, ok, err := s.ReadRaw(ctx, collection)
	return ok, err
}

// ReadRaw returns the encoded payload of a collection.
func (s *Store) ReadRaw(ctx context.Context, collection string) (json.RawMessage, bool, error) {
	raw, ok, err := s.medium.Get(ctx, collection)
	if err != nil {
		s.log.Warn("collection_read_failed", zap.String("collection", collection), zap.Error(err))
		return nil, false, apperr.StorageUnavailable("read "+collection, err)
	}
	return raw, ok, nil
}

// Collections lists every stored collection name.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	keys, err := s.medium.Keys(ctx)
	if err != nil {
		return nil, apperr.StorageUnavailable("list collections", err)
	}
	return keys, nil
}

// Revision returns the write counter of a collection, or 0 when the medium
// does not count writes.
func (s *Store) Revision(ctx context.Context, collection string) (int64, error) {
	r, ok := s.medium.(Revisioner)
	if !ok {
		return 0, nil
	}
	rev, err := r.Revision(ctx, collection)
	if err != nil {
		return 0, apperr.StorageUnavailable("revision "+collection, err)
	}
	return rev, nil
}

// Batch collects writes to several collections and commits them atomically.
type Batch struct {
	s    *Store
	muts []Mutation
	err  error
}

// Batch starts an empty batch.
func (s *Store) Batch() *Batch {
	return &Batch{s: s}
}

// Put stages a collection replacement. A nil slice is stored as [].
func Put[T any](b *Batch, collection string, items []T) *Batch {
	if items == nil {
		items = []T{}
	}
	return b.put(collection, items)
}

// PutRecord stages a singleton collection replacement.
func PutRecord[T any](b *Batch, collection string, rec T) *Batch {
	return b.put(collection, rec)
}

// PutRaw stages an already encoded payload. The payload must be valid JSON.
func (b *Batch) PutRaw(collection string, raw json.RawMessage) *Batch {
	if b.err != nil {
		return b
	}
	if !json.Valid(raw) {
		b.err = fmt.Errorf("encode %s: invalid JSON payload", collection)
		return b
	}
	b.muts = append(b.muts, Mutation{Key: collection, Value: append([]byte(nil), raw...)})
	return b
}

// Delete stages a collection removal.
func (b *Batch) Delete(collection string) *Batch {
	b.muts = append(b.muts, Mutation{Key: collection, Delete: true})
	return b
}

// Len returns the number of staged mutations.
func (b *Batch) Len() int {
	return len(b.muts)
}

func (b *Batch) put(collection string, v any) *Batch {
	if b.err != nil {
		return b
	}
	data, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("encode %s: %w", collection, err)
		return b
	}
	b.muts = append(b.muts, Mutation{Key: collection, Value: data})
	return b
}

// Commit applies every staged mutation or none. A medium failure is
// reported as StorageUnavailable and leaves the previous state intact.
func (b *Batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.muts) == 0 {
		return nil
	}
	keys := make([]string, len(b.muts))
	for i, m := range b.muts {
		keys[i] = m.Key
	}
	if err := b.s.medium.Apply(ctx, b.muts); err != nil {
		b.s.log.Warn("collections_commit_failed", zap.Strings("collections", keys), zap.Error(err))
		return apperr.StorageUnavailable("write "+keys[0], err)
	}
	b.s.log.Debug("collections_committed", zap.Strings("collections", keys))
	return nil
}
