package storefront

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/catalog"
	"github.com/roach88/shopsync/internal/idgen"
	"github.com/roach88/shopsync/internal/metrics"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/store"
	clocks "github.com/roach88/shopsync/internal/testutil"
)

type fixture struct {
	page    *Page
	medium  *store.Memory
	inbox   *Inbox
	metrics *metrics.Recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	m := store.NewMemory(0)
	inbox := &Inbox{}
	rec := metrics.New()
	p, err := New(Deps{
		Store:    store.New(m),
		Clock:    clocks.NewDeterministicClock(),
		IDs:      idgen.NewSequenceGenerator("p"),
		Metrics:  rec,
		Notifier: inbox,
	})
	require.NoError(t, err)
	return fixture{page: p, medium: m, inbox: inbox, metrics: rec}
}

func (f fixture) dispatch(t *testing.T, in Intent) Outcome {
	t.Helper()
	out, err := f.page.Dispatch(context.Background(), in)
	require.NoError(t, err)
	return out
}

var headphones = model.ProductRef{ID: "1", Name: "Wireless Headphones", Price: 99.99, Category: "electronics"}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestDispatch_CartBadgesFollowEveryIntent(t *testing.T) {
	f := newFixture(t)

	out := f.dispatch(t, Intent{Kind: KindAddToCart, Product: headphones})
	assert.True(t, out.OK())
	assert.Equal(t, "Wireless Headphones added to cart!", out.Message)
	assert.Equal(t, Badges{Cart: 1}, out.Badges)

	out = f.dispatch(t, Intent{Kind: KindAddToCart, Product: model.ProductRef{ID: " 1 ", Name: "Wireless Headphones", Price: 99.99}})
	assert.Equal(t, 2, out.Badges.Cart)

	out = f.dispatch(t, Intent{Kind: KindAdjustQuantity, ID: "1", Delta: -5})
	assert.Equal(t, 1, out.Badges.Cart)
	assert.Empty(t, out.Message)

	out = f.dispatch(t, Intent{Kind: KindAdjustQuantity, ID: "missing", Delta: 3})
	assert.True(t, out.OK())
	assert.Equal(t, 1, out.Badges.Cart)

	out = f.dispatch(t, Intent{Kind: KindCheckout})
	assert.Equal(t, "Proceeding to checkout: 1 items, $99.99", out.Message)

	out = f.dispatch(t, Intent{Kind: KindRemoveFromCart, ID: "1"})
	assert.Equal(t, 0, out.Badges.Cart)
	assert.Equal(t, "Item removed from cart", out.Message)

	out = f.dispatch(t, Intent{Kind: KindCheckout})
	assert.Equal(t, apperr.CodeEmptyCart, out.Code)
	assert.Equal(t, "Your cart is empty!", out.Message)
}

func TestDispatch_ToggleNotifiesExactlyOnce(t *testing.T) {
	f := newFixture(t)

	out := f.dispatch(t, Intent{Kind: KindToggleWishlist, Product: headphones})
	assert.Equal(t, "Wireless Headphones added to wishlist", out.Message)
	assert.Equal(t, 1, out.Badges.Wishlist)

	out = f.dispatch(t, Intent{Kind: KindToggleWishlist, Product: headphones})
	assert.Equal(t, "Wireless Headphones removed from wishlist", out.Message)
	assert.Equal(t, 0, out.Badges.Wishlist)

	assert.Equal(t, []string{
		"Wireless Headphones added to wishlist",
		"Wireless Headphones removed from wishlist",
	}, f.inbox.Messages())
}

func TestDispatch_WishlistIntents(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, Intent{Kind: KindToggleWishlist, Product: headphones})
	f.dispatch(t, Intent{Kind: KindToggleWishlist, Product: model.ProductRef{ID: "2", Name: "Watch", Price: 199.99}})

	out := f.dispatch(t, Intent{Kind: KindWishlistToCart, ID: "2"})
	assert.Equal(t, "Watch added to cart!", out.Message)
	assert.Equal(t, Badges{Cart: 1, Wishlist: 2}, out.Badges)

	out = f.dispatch(t, Intent{Kind: KindWishlistToCart, ID: "9"})
	assert.Equal(t, apperr.CodeNotFound, out.Code)

	out = f.dispatch(t, Intent{Kind: KindRemoveFromWishlist, ID: "1"})
	assert.Equal(t, "Product removed from wishlist", out.Message)
	assert.Equal(t, 1, out.Badges.Wishlist)

	out = f.dispatch(t, Intent{Kind: KindClearWishlist})
	assert.Equal(t, "Wishlist cleared", out.Message)
	assert.Equal(t, Badges{Cart: 1, Wishlist: 0}, out.Badges)
}

func TestDispatch_CatalogTransfer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out := f.dispatch(t, Intent{Kind: KindSubmitProduct, Submission: catalog.Submission{Name: "Lamp", Price: 50}})
	assert.Equal(t, apperr.CodeNotLoggedIn, out.Code)

	f.dispatch(t, Intent{Kind: KindLogin, User: Login{ID: "s1", Name: "Sam", Role: model.RoleShipper}})
	out = f.dispatch(t, Intent{Kind: KindSubmitProduct, Submission: catalog.Submission{Name: "Lamp", Price: 50, CommissionPercent: 10}})
	require.True(t, out.OK(), out.Message)
	assert.Equal(t, "Product uploaded to warehouse successfully!", out.Message)

	out = f.dispatch(t, Intent{Kind: KindSubmitProduct, Submission: catalog.Submission{Price: -1}})
	assert.Equal(t, apperr.CodeValidation, out.Code)

	out = f.dispatch(t, Intent{Kind: KindPromoteProduct, ID: "p-1"})
	assert.Equal(t, apperr.CodeRoleMismatch, out.Code)

	out = f.dispatch(t, Intent{Kind: KindLogin, User: Login{ID: "m1", Name: "Mia", Role: "Manager"}})
	assert.Equal(t, "Welcome, Mia!", out.Message)

	out = f.dispatch(t, Intent{Kind: KindPromoteProduct, ID: "p-1"})
	assert.Equal(t, "Product added to your store successfully!", out.Message)
	out = f.dispatch(t, Intent{Kind: KindPromoteProduct, ID: "p-1"})
	assert.Equal(t, apperr.CodeAlreadyPromoted, out.Code)
	assert.Equal(t, "This product is already in your store!", out.Message)

	listings, err := f.page.Catalog().StoreProducts(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, 60.0, listings[0].Price)
	assert.Equal(t, "Mia's Store", listings[0].StoreName)

	out = f.dispatch(t, Intent{Kind: KindRenameStore, StoreName: "  Lamp Land "})
	assert.Equal(t, "Store name updated successfully!", out.Message)
	listings, err = f.page.Catalog().StoreProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lamp Land", listings[0].StoreName)

	out = f.dispatch(t, Intent{Kind: KindRemoveProduct, ID: listings[0].ID, Scope: catalog.ScopeStore})
	assert.Equal(t, "Product removed from your store!", out.Message)

	f.dispatch(t, Intent{Kind: KindLogin, User: Login{ID: "s1", Name: "Sam", Role: model.RoleShipper}})
	out = f.dispatch(t, Intent{Kind: KindRemoveProduct, ID: "p-1", Scope: catalog.ScopeWarehouse})
	assert.Equal(t, "Product removed from warehouse!", out.Message)

	f.dispatch(t, Intent{Kind: KindLogout})
	_, found, err := f.page.Sessions().Current(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDispatch_UnknownKindIsValidation(t *testing.T) {
	f := newFixture(t)

	out := f.dispatch(t, Intent{Kind: "teleport"})
	assert.Equal(t, apperr.CodeValidation, out.Code)
}

func TestDispatch_StorageFailureIsReturned(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.medium.Close())

	out, err := f.page.Dispatch(context.Background(), Intent{Kind: KindAddToCart, Product: headphones})
	require.Error(t, err)
	assert.True(t, apperr.IsStorageUnavailable(err))
	assert.Equal(t, apperr.CodeStorageUnavailable, out.Code)
	assert.Equal(t, "Your changes could not be saved. Storage is unavailable.", out.Message)
	assert.Len(t, f.inbox.Outcomes(), 1)
}

func TestDispatch_RecordsMetrics(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, Intent{Kind: KindAddToCart, Product: headphones})
	f.dispatch(t, Intent{Kind: KindCheckout})
	f.dispatch(t, Intent{Kind: KindRemoveFromCart, ID: "1"})
	f.dispatch(t, Intent{Kind: KindCheckout})

	n, err := testutil.GatherAndCount(f.metrics.Registry(), "shopsync_intents_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n, "add ok, checkout ok, remove ok, checkout empty_cart")
}

func TestPage_Badges(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, Intent{Kind: KindAddToCart, Product: model.ProductRef{ID: "1", Name: "A", Price: 1, Quantity: 3}})

	b, err := f.page.Badges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Badges{Cart: 3}, b)
}
