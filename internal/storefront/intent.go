package storefront

import (
	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/catalog"
	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/model"
)

// Kind names a user intent.
type Kind string

const (
	KindLogin              Kind = "login"
	KindLogout             Kind = "logout"
	KindAddToCart          Kind = "add-to-cart"
	KindAdjustQuantity     Kind = "adjust-quantity"
	KindRemoveFromCart     Kind = "remove-from-cart"
	KindCheckout           Kind = "checkout"
	KindToggleWishlist     Kind = "toggle-wishlist"
	KindRemoveFromWishlist Kind = "remove-from-wishlist"
	KindClearWishlist      Kind = "clear-wishlist"
	KindWishlistToCart     Kind = "wishlist-to-cart"
	KindSubmitProduct      Kind = "submit-product"
	KindPromoteProduct     Kind = "promote-product"
	KindRemoveProduct      Kind = "remove-product"
	KindRenameStore        Kind = "rename-store"
)

// Kinds lists every intent kind Dispatch accepts.
var Kinds = []Kind{
	KindLogin, KindLogout,
	KindAddToCart, KindAdjustQuantity, KindRemoveFromCart, KindCheckout,
	KindToggleWishlist, KindRemoveFromWishlist, KindClearWishlist, KindWishlistToCart,
	KindSubmitProduct, KindPromoteProduct, KindRemoveProduct, KindRenameStore,
}

// Intent is one structured user action pushed into a page. Only the fields
// the kind reads are set; products always arrive as a ProductRef and are
// never reconstructed from rendered text.
type Intent struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// add-to-cart, toggle-wishlist
	Product model.ProductRef `json:"product,omitempty" yaml:"product,omitempty"`

	// adjust-quantity, remove-from-cart, remove-from-wishlist,
	// wishlist-to-cart, promote-product, remove-product
	ID    identity.ID   `json:"id,omitempty" yaml:"id,omitempty"`
	Delta int           `json:"delta,omitempty" yaml:"delta,omitempty"`
	Scope catalog.Scope `json:"scope,omitempty" yaml:"scope,omitempty"`

	// submit-product
	Submission catalog.Submission `json:"submission,omitempty" yaml:"submission,omitempty"`

	// login, rename-store
	User      Login  `json:"user,omitempty" yaml:"user,omitempty"`
	StoreName string `json:"storeName,omitempty" yaml:"storeName,omitempty"`
}

// Login carries the fields of a login form.
type Login struct {
	ID        identity.ID `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string      `json:"name" yaml:"name"`
	Role      model.Role  `json:"role" yaml:"role"`
	StoreID   identity.ID `json:"storeId,omitempty" yaml:"storeId,omitempty"`
	StoreName string      `json:"storeName,omitempty" yaml:"storeName,omitempty"`
}

func (l Login) session() model.UserSession {
	return model.UserSession{ID: l.ID, Name: l.Name, Role: l.Role, StoreID: l.StoreID, StoreName: l.StoreName}
}

// Badges are the counts every page shows after an intent.
type Badges struct {
	Cart     int `json:"cart" yaml:"cart"`
	Wishlist int `json:"wishlist" yaml:"wishlist"`
}

// Outcome is what a page shows after an intent: the notification text, the
// error code when the intent was rejected, and the fresh badges.
type Outcome struct {
	Kind    Kind        `json:"kind" yaml:"kind"`
	Message string      `json:"message,omitempty" yaml:"message,omitempty"`
	Code    apperr.Code `json:"code,omitempty" yaml:"code,omitempty"`
	Badges  Badges      `json:"badges" yaml:"badges"`
}

// OK reports whether the intent was applied.
func (o Outcome) OK() bool { return o.Code == "" }
