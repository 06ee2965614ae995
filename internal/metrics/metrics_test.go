package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CountsIntents(t *testing.T) {
	r := New()

	r.Intent("add-to-cart", "ok")
	r.Intent("add-to-cart", "ok")
	r.Intent("checkout", "EMPTY_CART")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.intents.WithLabelValues("add-to-cart", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.intents.WithLabelValues("checkout", "EMPTY_CART")))
}

func TestRecorder_Badges(t *testing.T) {
	r := New()
	r.Badges(3, 2)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.cart))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.wishlist))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.Intent("x", "ok")
	r.Badges(1, 1)
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.Intent("toggle-wishlist", "ok")
	path := filepath.Join(t.TempDir(), "shopsync.prom")

	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `shopsync_intents_total{intent="toggle-wishlist",outcome="ok"} 1`)
	assert.Contains(t, string(data), "shopsync_cart_count 0")
}
