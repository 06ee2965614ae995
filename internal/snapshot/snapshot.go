// Package snapshot copies every storefront collection to and from a blob
// store as a single JSON document.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/blob"
	"github.com/roach88/shopsync/internal/clock"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/store"
)

// FormatVersion is written into every document and checked on import.
const FormatVersion = 1

// Prefix is the blob key prefix snapshots are listed under.
const Prefix = "snapshots/"

// Document is the exported form of a store. Collections that were never
// written are absent from the map.
type Document struct {
	Version     int                        `json:"version"`
	ExportedAt  time.Time                  `json:"exportedAt"`
	Collections map[string]json.RawMessage `json:"collections"`
}

// Deps wires a Service.
type Deps struct {
	Store  *store.Store
	Blobs  blob.Store
	Clock  clock.Clock
	Logger *zap.Logger
}

// Service exports and imports snapshots.
type Service struct {
	store *store.Store
	blobs blob.Store
	clock clock.Clock
	log   *zap.Logger
}

// New builds a Service.
func New(deps Deps) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("snapshot: store is required")
	}
	if deps.Blobs == nil {
		return nil, errors.New("snapshot: blob store is required")
	}
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{store: deps.Store, blobs: deps.Blobs, clock: deps.Clock, log: deps.Logger}, nil
}

// DefaultKey names a snapshot after the moment it was taken.
func DefaultKey(at time.Time) string {
	return Prefix + at.UTC().Format("20060102T150405Z") + ".json"
}

// Export reads every known collection and writes them to key. An empty key
// uses DefaultKey.
func (s *Service) Export(ctx context.Context, key string) (blob.Info, Document, error) {
	now := s.clock.Now()
	if key == "" {
		key = DefaultKey(now)
	}
	doc := Document{Version: FormatVersion, ExportedAt: now.UTC(), Collections: map[string]json.RawMessage{}}
	for _, name := range model.Collections {
		raw, ok, err := s.store.ReadRaw(ctx, name)
		if err != nil {
			return blob.Info{}, Document{}, err
		}
		if ok {
			doc.Collections[name] = raw
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return blob.Info{}, Document{}, fmt.Errorf("encode snapshot: %w", err)
	}
	info, err := s.blobs.Put(ctx, key, data)
	if err != nil {
		s.log.Warn("snapshot_export_failed", zap.String("key", key), zap.Error(err))
		return blob.Info{}, Document{}, apperr.StorageUnavailable("export snapshot "+key, err)
	}
	s.log.Info("snapshot_exported",
		zap.String("key", key),
		zap.String("driver", string(s.blobs.Driver())),
		zap.Int("collections", len(doc.Collections)),
	)
	return info, doc, nil
}

// Import replaces the store contents with the snapshot at key. Known
// collections missing from the snapshot are removed. The whole import is one
// batch, so a failure leaves the store as it was.
func (s *Service) Import(ctx context.Context, key string) (Document, error) {
	data, err := s.blobs.Get(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		return Document{}, apperr.NotFound(fmt.Sprintf("snapshot %s not found", key))
	}
	if err != nil {
		return Document{}, apperr.StorageUnavailable("import snapshot "+key, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return Document{}, err
	}
	b := s.store.Batch()
	for _, name := range model.Collections {
		if raw, ok := doc.Collections[name]; ok {
			b.PutRaw(name, raw)
		} else {
			b.Delete(name)
		}
	}
	if err := b.Commit(ctx); err != nil {
		return Document{}, err
	}
	s.log.Info("snapshot_imported", zap.String("key", key), zap.Int("collections", len(doc.Collections)))
	return doc, nil
}

// List returns the stored snapshots, oldest key first.
func (s *Service) List(ctx context.Context) ([]blob.Info, error) {
	infos, err := s.blobs.List(ctx, Prefix)
	if err != nil {
		return nil, apperr.StorageUnavailable("list snapshots", err)
	}
	return infos, nil
}

// Decode parses and checks a snapshot document.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, apperr.Validation("snapshot is not valid JSON", "snapshot")
	}
	if doc.Version != FormatVersion {
		return Document{}, apperr.Validation(fmt.Sprintf("unsupported snapshot version %d", doc.Version), "version")
	}
	for name := range doc.Collections {
		if !slices.Contains(model.Collections, name) {
			return Document{}, apperr.Validation(fmt.Sprintf("unknown collection %q in snapshot", name), "collections")
		}
	}
	return doc, nil
}
