// Package idgen produces record identifiers.
package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/shopsync/internal/identity"
)

// Generator produces fresh identifiers.
type Generator interface {
	Generate() identity.ID
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers, so product ids
// sort by submission time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() identity.ID {
	return identity.ID(uuid.Must(uuid.NewV7()).String())
}

// SequenceGenerator returns prefix-1, prefix-2, ... for deterministic runs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator. An empty prefix means "id".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next identifier in the sequence.
func (g *SequenceGenerator) Generate() identity.ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return identity.ID(fmt.Sprintf("%s-%d", g.prefix, g.n))
}
