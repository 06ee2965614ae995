package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mediumFactory func(t *testing.T) Medium

func mediumFactories(t *testing.T) map[string]mediumFactory {
	t.Helper()
	factories := map[string]mediumFactory{
		"memory": func(t *testing.T) Medium {
			return NewMemory(0)
		},
		"sqlite": func(t *testing.T) Medium {
			m, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			t.Cleanup(func() { m.Close() })
			return m
		},
		"sqlite-pure": func(t *testing.T) Medium {
			m, err := OpenSQLitePure(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			t.Cleanup(func() { m.Close() })
			return m
		},
	}
	if dsn := os.Getenv("SHOPSYNC_TEST_POSTGRES_DSN"); dsn != "" {
		factories["postgres"] = func(t *testing.T) Medium {
			m, err := OpenPostgres(context.Background(), dsn)
			require.NoError(t, err)
			_, err = m.DB().Exec(`DELETE FROM collections`)
			require.NoError(t, err)
			t.Cleanup(func() { m.Close() })
			return m
		}
	}
	return factories
}

func TestMedium_Contract(t *testing.T) {
	for name, open := range mediumFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := open(t)

			_, ok, err := m.Get(ctx, "cart")
			require.NoError(t, err)
			assert.False(t, ok, "absent key reports not found")

			require.NoError(t, m.Apply(ctx, []Mutation{
				{Key: "cart", Value: []byte(`[{"id":"1"}]`)},
				{Key: "wishlist", Value: []byte(`[]`)},
			}))

			v, ok, err := m.Get(ctx, "cart")
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `[{"id":"1"}]`, string(v))

			keys, err := m.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"cart", "wishlist"}, keys)

			require.NoError(t, m.Apply(ctx, []Mutation{{Key: "cart", Delete: true}}))
			_, ok, err = m.Get(ctx, "cart")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMedium_RevisionCountsWrites(t *testing.T) {
	for name, open := range mediumFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := open(t)
			r, ok := m.(Revisioner)
			require.True(t, ok)

			rev, err := r.Revision(ctx, "cart")
			require.NoError(t, err)
			assert.Equal(t, int64(0), rev)

			for i := 0; i < 3; i++ {
				require.NoError(t, m.Apply(ctx, []Mutation{{Key: "cart", Value: []byte(`[]`)}}))
			}
			rev, err = r.Revision(ctx, "cart")
			require.NoError(t, err)
			assert.Equal(t, int64(3), rev)
		})
	}
}

func TestMedium_ClosedFails(t *testing.T) {
	for name, open := range mediumFactories(t) {
		t.Run(name, func(t *testing.T) {
			m := open(t)
			require.NoError(t, m.Close())

			err := m.Apply(context.Background(), []Mutation{{Key: "cart", Value: []byte(`[]`)}})
			assert.Error(t, err)
		})
	}
}

func TestMemory_QuotaRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(20)

	require.NoError(t, m.Apply(ctx, []Mutation{{Key: "cart", Value: []byte(`[1,2]`)}}))
	before := m.Size()

	err := m.Apply(ctx, []Mutation{
		{Key: "wishlist", Value: []byte(`[]`)},
		{Key: "storeProducts", Value: []byte(`[1,2,3,4,5,6,7,8]`)},
	})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, before, m.Size())

	_, ok, err := m.Get(ctx, "wishlist")
	require.NoError(t, err)
	assert.False(t, ok, "no partial write")
}

func TestMemory_QuotaCountsReplacementNotGrowth(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(12)

	require.NoError(t, m.Apply(ctx, []Mutation{{Key: "cart", Value: []byte(`[1,2,3]`)}}))
	// replacing the same key reuses its bytes
	require.NoError(t, m.Apply(ctx, []Mutation{{Key: "cart", Value: []byte(`[4,5,6]`)}}))
	// a delete in the same batch frees room
	require.NoError(t, m.Apply(ctx, []Mutation{
		{Key: "cart", Delete: true},
		{Key: "list", Value: []byte(`[7,8,9]`)},
	}))
	assert.Equal(t, 11, m.Size())
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	require.NoError(t, m.Apply(ctx, []Mutation{{Key: "k", Value: []byte(`[]`)}}))

	v, _, _ := m.Get(ctx, "k")
	v[0] = 'x'

	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "[]", string(again))
}
