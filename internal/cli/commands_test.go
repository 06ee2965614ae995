package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shopsync/internal/dashboard"
	"github.com/roach88/shopsync/internal/model"
)

// shell runs commands against one database file, like a user typing into
// one terminal.
type shell struct {
	t  *testing.T
	db string
}

func newShell(t *testing.T) *shell {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	return &shell{t: t, db: filepath.Join(t.TempDir(), "shop.db")}
}

func (s *shell) run(args ...string) (string, error) {
	s.t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--driver", "sqlite-pure", "--db", s.db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (s *shell) ok(args ...string) string {
	s.t.Helper()
	out, err := s.run(args...)
	require.NoError(s.t, err, out)
	return out
}

// data decodes the data field of a JSON response into v.
func (s *shell) data(v any, args ...string) {
	s.t.Helper()
	out := s.ok(append(args, "--format", "json")...)
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(s.t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(s.t, "ok", resp.Status)
	require.NoError(s.t, json.Unmarshal(resp.Data, v))
}

func TestCart_AddShowCheckout(t *testing.T) {
	sh := newShell(t)

	out := sh.ok("cart", "add", "1")
	assert.Contains(t, out, "Wireless Earbuds added to cart!")
	assert.Contains(t, out, "cart: 1  wishlist: 0")

	out = sh.ok("cart", "add", " 1 ", "--quantity", "2")
	assert.Contains(t, out, "cart: 3  wishlist: 0")

	var view CartView
	sh.data(&view, "cart", "show")
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Count)
	assert.Equal(t, "$149.97", view.Total)

	out = sh.ok("cart", "checkout")
	assert.Contains(t, out, "Proceeding to checkout: 3 items, $149.97")

	out = sh.ok("cart", "adjust", "1", "--by", "-10")
	assert.Contains(t, out, "cart: 1  wishlist: 0")

	out = sh.ok("cart", "remove", "1")
	assert.Contains(t, out, "Item removed from cart")
	assert.Contains(t, out, "cart: 0  wishlist: 0")
	assert.Contains(t, sh.ok("cart", "show"), "Your cart is empty.")
}

func TestCart_EmptyCheckoutIsRejected(t *testing.T) {
	sh := newShell(t)

	out, err := sh.run("cart", "checkout")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, Reported(err))
	assert.Contains(t, out, "Error [EMPTY_CART]")
}

func TestCart_RejectionAsJSON(t *testing.T) {
	sh := newShell(t)

	out, err := sh.run("cart", "add", "missing", "--format", "json", "--price", "-1")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestWishlist_ToggleMoveAndClear(t *testing.T) {
	sh := newShell(t)

	out := sh.ok("wishlist", "toggle", "2")
	assert.Contains(t, out, "cart: 0  wishlist: 1")

	var items []model.WishlistEntry
	sh.data(&items, "wishlist", "list")
	require.Len(t, items, 1)
	assert.Equal(t, "Smart Watch", items[0].Name)

	out = sh.ok("wishlist", "to-cart", "2")
	assert.Contains(t, out, "Smart Watch added to cart!")
	assert.Contains(t, out, "cart: 1  wishlist: 1")

	out = sh.ok("wishlist", "toggle", "2")
	assert.Contains(t, out, "cart: 1  wishlist: 0")

	sh.ok("wishlist", "toggle", "1")
	out = sh.ok("wishlist", "clear")
	assert.Contains(t, out, "Wishlist cleared")
	assert.Contains(t, sh.ok("wishlist", "list"), "Your wishlist is empty.")

	out, err := sh.run("wishlist", "to-cart", "2")
	require.Error(t, err)
	assert.Contains(t, out, "Error [NOT_FOUND]")
}

func TestSession_LoginWhoamiLogout(t *testing.T) {
	sh := newShell(t)

	out, err := sh.run("whoami")
	require.Error(t, err)
	assert.Contains(t, out, "Error [NOT_LOGGED_IN]")

	out = sh.ok("login", "Mia", "--role", "manager", "--id", "m1", "--store-id", "st1")
	assert.Contains(t, out, "Welcome, Mia!")

	var u model.UserSession
	sh.data(&u, "whoami")
	assert.Equal(t, model.RoleManager, u.Role)
	assert.Equal(t, "st1", u.StoreID.String())
	assert.Equal(t, "Mia's Store", u.StoreLabel())

	sh.ok("logout")
	_, err = sh.run("whoami")
	assert.Error(t, err)
}

func TestCatalog_ShipperToManagerToCustomer(t *testing.T) {
	sh := newShell(t)

	sh.ok("login", "Sam", "--role", "shipper", "--id", "s1")
	out := sh.ok("catalog", "submit",
		"--name", "Lamp", "--price", "50", "--category", "home",
		"--commission", "10", "--description", "Desk lamp", "--image", "https://example.com/lamp.jpg")
	assert.Contains(t, out, "Product uploaded to warehouse successfully!")

	var warehouse []model.WarehouseProduct
	sh.data(&warehouse, "catalog", "list", "--scope", "warehouse")
	require.Len(t, warehouse, 1)
	lampID := warehouse[0].ID.String()

	out, err := sh.run("catalog", "promote", lampID)
	require.Error(t, err)
	assert.Contains(t, out, "Error [ROLE_MISMATCH]")

	sh.ok("login", "Mia", "--role", "manager", "--store-id", "st1")
	out = sh.ok("catalog", "promote", lampID)
	assert.Contains(t, out, "Product added to your store successfully!")

	out, err = sh.run("catalog", "promote", lampID)
	require.Error(t, err)
	assert.Contains(t, out, "Error [ALREADY_PROMOTED]")

	sh.ok("catalog", "rename", "Lamp Land")
	var listings []model.StoreProduct
	sh.data(&listings, "catalog", "list")
	require.Len(t, listings, 1)
	assert.Equal(t, 60.0, listings[0].Price)
	assert.Equal(t, "Lamp Land", listings[0].StoreName)

	var d dashboard.Dashboard
	sh.data(&d, "dashboard")
	require.NotNil(t, d.Manager)
	assert.Equal(t, 1, d.Manager.ProductCount)

	var cards []dashboard.FeaturedProduct
	sh.data(&cards, "featured")
	require.NotEmpty(t, cards)
	assert.Equal(t, "Lamp", cards[0].Name)

	sh.ok("login", "Sam", "--role", "shipper", "--id", "s1")
	out = sh.ok("catalog", "remove", lampID, "--scope", "warehouse")
	assert.Contains(t, out, "Product removed from warehouse!")
	sh.data(&listings, "catalog", "list")
	assert.Empty(t, listings)
}

func TestCatalog_ListRejectsUnknownScope(t *testing.T) {
	sh := newShell(t)

	_, err := sh.run("catalog", "list", "--scope", "attic")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFeatured_SampleCatalog(t *testing.T) {
	sh := newShell(t)

	var cards []dashboard.FeaturedProduct
	sh.data(&cards, "featured")
	require.Len(t, cards, 4)
	assert.Equal(t, "Wireless Earbuds", cards[0].Name)
}

func TestSnapshot_ExportImportList(t *testing.T) {
	sh := newShell(t)
	blobRoot := filepath.Join(t.TempDir(), "blobs")

	sh.ok("cart", "add", "1")
	sh.ok("wishlist", "toggle", "2")

	var exported SnapshotResult
	sh.data(&exported, "snapshot", "export", "snapshots/before.json", "--blob-root", blobRoot)
	assert.Equal(t, "snapshots/before.json", exported.Key)
	assert.Equal(t, "fs", exported.Driver)
	assert.Equal(t, []string{"cart", "wishlist"}, exported.Collections)

	sh.ok("cart", "remove", "1")
	sh.ok("wishlist", "clear")

	out := sh.ok("snapshot", "import", "snapshots/before.json", "--blob-root", blobRoot)
	assert.Contains(t, out, "Imported 2 collections")
	assert.Contains(t, out, "cart: 1  wishlist: 1")

	out = sh.ok("snapshot", "list", "--blob-root", blobRoot)
	assert.Contains(t, out, "snapshots/before.json")

	out, err := sh.run("snapshot", "import", "snapshots/missing.json", "--blob-root", blobRoot)
	require.Error(t, err)
	assert.Contains(t, out, "Error [NOT_FOUND]")
}

func TestMetricsTextfile(t *testing.T) {
	sh := newShell(t)
	path := filepath.Join(t.TempDir(), "shopsync.prom")

	sh.ok("cart", "add", "1", "--metrics-textfile", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `shopsync_intents_total{intent="add-to-cart",outcome="ok"} 1`)
	assert.Contains(t, string(data), "shopsync_cart_count 1")
}

func TestOpenStorageFailureIsCommandError(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--driver", "carrier-pigeon", "cart", "show"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.False(t, Reported(err))
}
