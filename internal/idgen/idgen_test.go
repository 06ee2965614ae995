package idgen

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shopsync/internal/identity"
)

func TestUUIDv7Generator_ProducesV7(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(id.String())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	gen := UUIDv7Generator{}
	seen := make(map[identity.ID]bool)
	for i := 0; i < 1000; i++ {
		id := gen.Generate()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("wh")
	assert.Equal(t, identity.ID("wh-1"), gen.Generate())
	assert.Equal(t, identity.ID("wh-2"), gen.Generate())

	assert.Equal(t, identity.ID("id-1"), NewSequenceGenerator("").Generate())
}

func TestSequenceGenerator_Concurrent(t *testing.T) {
	gen := NewSequenceGenerator("p")
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[identity.ID]bool)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.Generate()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}
