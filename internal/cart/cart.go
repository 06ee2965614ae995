// Package cart merges, adjusts and totals the cart collection.
//
// One line exists per product identity. Adding an identity already present
// increases its quantity; quantities never drop below 1 on adjustment and a
// line leaves the cart only through Remove.
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/money"
	"github.com/roach88/shopsync/internal/store"
)

var errStoreRequired = errors.New("cart engine: store is required")

// Deps wires the cart engine.
type Deps struct {
	Store  *store.Store
	Logger *zap.Logger
}

// Engine operates on the cart collection.
type Engine struct {
	store *store.Store
	log   *zap.Logger
}

// Checkout is the summary handed to the checkout page.
type Checkout struct {
	Lines []model.CartEntry
	Count int
	Total decimal.Decimal
}

// New constructs an Engine.
func New(deps Deps) (*Engine, error) {
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: deps.Store, log: log}, nil
}

// Lines returns the cart lines in stored order. Lines persisted without a
// quantity read as quantity 1.
func (e *Engine) Lines(ctx context.Context) ([]model.CartEntry, error) {
	lines, err := store.Read[model.CartEntry](ctx, e.store, model.CollectionCart)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		if lines[i].Quantity < 1 {
			lines[i].Quantity = 1
		}
	}
	return lines, nil
}

// Add merges ref into the cart and returns the resulting line.
func (e *Engine) Add(ctx context.Context, ref model.ProductRef) (model.CartEntry, error) {
	id := identity.Normalize(ref.ID.String())
	if id.IsZero() {
		return model.CartEntry{}, apperr.Validation("product id is required", "id")
	}
	if ref.Price < 0 {
		return model.CartEntry{}, apperr.Validation("price must not be negative", "price")
	}
	qty := ref.Quantity
	if qty < 1 {
		qty = 1
	}

	lines, err := e.Lines(ctx)
	if err != nil {
		return model.CartEntry{}, err
	}

	var line model.CartEntry
	if i := identity.Index(lines, cartID, id); i >= 0 {
		lines[i].Quantity += qty
		line = lines[i]
	} else {
		line = model.CartEntry{
			ID:       id,
			Name:     ref.Name,
			Price:    ref.Price,
			Image:    ref.Image,
			Quantity: qty,
		}
		lines = append(lines, line)
	}

	if err := store.Write(ctx, e.store, model.CollectionCart, lines); err != nil {
		return model.CartEntry{}, err
	}
	e.log.Debug("cart_line_added", zap.String("id", id.String()), zap.Int("quantity", line.Quantity))
	return line, nil
}

// AdjustQuantity changes a line's quantity by delta, clamped to a floor of 1.
// ok is false, and nothing is written, when the cart has no such line.
func (e *Engine) AdjustQuantity(ctx context.Context, id identity.ID, delta int) (line model.CartEntry, ok bool, err error) {
	lines, err := e.Lines(ctx)
	if err != nil {
		return model.CartEntry{}, false, err
	}
	i := identity.Index(lines, cartID, id)
	if i < 0 {
		return model.CartEntry{}, false, nil
	}

	lines[i].Quantity = max(1, lines[i].Quantity+delta)
	if err := store.Write(ctx, e.store, model.CollectionCart, lines); err != nil {
		return model.CartEntry{}, false, err
	}
	e.log.Debug("cart_quantity_adjusted", zap.String("id", id.String()), zap.Int("quantity", lines[i].Quantity))
	return lines[i], true, nil
}

// Remove drops every line with the identity and returns how many went.
func (e *Engine) Remove(ctx context.Context, id identity.ID) (int, error) {
	lines, err := e.Lines(ctx)
	if err != nil {
		return 0, err
	}
	kept := identity.Without(lines, cartID, id)
	removed := len(lines) - len(kept)
	if err := store.Write(ctx, e.store, model.CollectionCart, kept); err != nil {
		return 0, err
	}
	e.log.Debug("cart_line_removed", zap.String("id", id.String()), zap.Int("removed", removed))
	return removed, nil
}

// Count is the sum of quantities, the cart badge value.
func (e *Engine) Count(ctx context.Context) (int, error) {
	lines, err := e.Lines(ctx)
	if err != nil {
		return 0, err
	}
	return countOf(lines), nil
}

// Total is the unrounded sum of price x quantity.
func (e *Engine) Total(ctx context.Context) (decimal.Decimal, error) {
	lines, err := e.Lines(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return totalOf(lines), nil
}

// BeginCheckout rejects an empty cart and otherwise summarizes it.
// It creates no order and leaves the cart untouched.
func (e *Engine) BeginCheckout(ctx context.Context) (Checkout, error) {
	lines, err := e.Lines(ctx)
	if err != nil {
		return Checkout{}, err
	}
	if len(lines) == 0 {
		return Checkout{}, apperr.EmptyCart()
	}
	return Checkout{Lines: lines, Count: countOf(lines), Total: totalOf(lines)}, nil
}

func cartID(l model.CartEntry) identity.ID { return l.ID }

func countOf(lines []model.CartEntry) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func totalOf(lines []model.CartEntry) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(money.LineTotal(l.Price, l.Quantity))
	}
	return total
}
