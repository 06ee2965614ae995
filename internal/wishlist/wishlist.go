// Package wishlist keeps the wishlist collection as a set keyed by product identity.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/clock"
	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/store"
)

const (
	defaultCategory = "General"
	defaultStore    = "GlobalMart"
)

var errStoreRequired = errors.New("wishlist engine: store is required")

// Action is the outcome of a toggle.
type Action string

const (
	Added   Action = "added"
	Removed Action = "removed"
)

// CartAdder is the part of the cart engine MoveToCart needs.
type CartAdder interface {
	Add(ctx context.Context, ref model.ProductRef) (model.CartEntry, error)
}

// Deps wires the wishlist engine.
type Deps struct {
	Store  *store.Store
	Clock  clock.Clock
	Logger *zap.Logger
}

// Engine operates on the wishlist collection.
type Engine struct {
	store *store.Store
	clock clock.Clock
	log   *zap.Logger
}

// New constructs an Engine. A nil clock means the system clock.
func New(deps Deps) (*Engine, error) {
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	e := &Engine{store: deps.Store, clock: deps.Clock, log: deps.Logger}
	if e.clock == nil {
		e.clock = clock.System{}
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	return e, nil
}

// Toggle removes the product when it is saved and saves it otherwise.
// The decision and the write happen in one read-modify-write; callers
// serialize Toggle with every other mutation on the same page.
func (e *Engine) Toggle(ctx context.Context, ref model.ProductRef) (Action, error) {
	id := identity.Normalize(ref.ID.String())
	if id.IsZero() {
		return "", apperr.Validation("product id is required", "id")
	}

	items, err := e.List(ctx)
	if err != nil {
		return "", err
	}

	action := Added
	if identity.Contains(items, entryID, id) {
		items = identity.Without(items, entryID, id)
		action = Removed
	} else {
		items = append(items, e.entryFor(id, ref))
	}

	if err := store.Write(ctx, e.store, model.CollectionWishlist, items); err != nil {
		return "", err
	}
	e.log.Debug("wishlist_toggled", zap.String("id", id.String()), zap.String("action", string(action)))
	return action, nil
}

// ToggleMessage is the notification text for a toggle.
func ToggleMessage(name string, action Action) string {
	if action == Removed {
		return fmt.Sprintf("%s removed from wishlist", name)
	}
	return fmt.Sprintf("%s added to wishlist", name)
}

func (e *Engine) entryFor(id identity.ID, ref model.ProductRef) model.WishlistEntry {
	category := strings.TrimSpace(ref.Category)
	if category == "" {
		category = defaultCategory
	}
	storeName := firstNonEmpty(ref.Store, ref.ShipperName, defaultStore)
	return model.WishlistEntry{
		ID:       id,
		Name:     ref.Name,
		Price:    ref.Price,
		Image:    ref.Image,
		Category: category,
		Store:    storeName,
		AddedAt:  e.clock.Now(),
	}
}

// IsMember reports whether the product is saved.
func (e *Engine) IsMember(ctx context.Context, id identity.ID) (bool, error) {
	items, err := e.List(ctx)
	if err != nil {
		return false, err
	}
	return identity.Contains(items, entryID, id), nil
}

// Count is the number of saved products, the wishlist badge value.
func (e *Engine) Count(ctx context.Context) (int, error) {
	items, err := e.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// List returns the saved products in the order they were added.
func (e *Engine) List(ctx context.Context) ([]model.WishlistEntry, error) {
	return store.Read[model.WishlistEntry](ctx, e.store, model.CollectionWishlist)
}

// Clear empties the wishlist.
func (e *Engine) Clear(ctx context.Context) error {
	if err := store.Write(ctx, e.store, model.CollectionWishlist, []model.WishlistEntry{}); err != nil {
		return err
	}
	e.log.Debug("wishlist_cleared")
	return nil
}

// Remove drops the product if saved. Removing an absent product is not an error.
func (e *Engine) Remove(ctx context.Context, id identity.ID) error {
	items, err := e.List(ctx)
	if err != nil {
		return err
	}
	if err := store.Write(ctx, e.store, model.CollectionWishlist, identity.Without(items, entryID, id)); err != nil {
		return err
	}
	e.log.Debug("wishlist_entry_removed", zap.String("id", id.String()))
	return nil
}

// MoveToCart adds a saved product to the cart with quantity 1. The product
// stays on the wishlist.
func (e *Engine) MoveToCart(ctx context.Context, id identity.ID, c CartAdder) (model.WishlistEntry, error) {
	items, err := e.List(ctx)
	if err != nil {
		return model.WishlistEntry{}, err
	}
	i := identity.Index(items, entryID, id)
	if i < 0 {
		return model.WishlistEntry{}, apperr.NotFound("Product not found in wishlist!")
	}
	entry := items[i]
	if _, err := c.Add(ctx, model.ProductRef{
		ID:       entry.ID,
		Name:     entry.Name,
		Price:    entry.Price,
		Image:    entry.Image,
		Quantity: 1,
	}); err != nil {
		return model.WishlistEntry{}, fmt.Errorf("move %s to cart: %w", id, err)
	}
	return entry, nil
}

func entryID(w model.WishlistEntry) identity.ID { return w.ID }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
