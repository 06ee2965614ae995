// Package catalog moves products from the shipper warehouse into manager stores.
//
// A product is Submitted when it exists only in warehouseProducts, Promoted
// once a store lists it, and Removed (terminal) when its warehouse entry is
// deleted, which also deletes every store listing derived from it.
//
// Store listings carry a denormalized copy of the store name. RenameStore
// rewrites it on every listing of the store in the same batch as the session,
// so a listing never shows a stale name after the call returns.
package catalog

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/clock"
	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/idgen"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/money"
	"github.com/roach88/shopsync/internal/store"
)

var errStoreRequired = errors.New("catalog pipeline: store is required")

// Scope selects which catalog a removal applies to.
type Scope string

const (
	ScopeWarehouse Scope = "warehouse"
	ScopeStore     Scope = "store"
)

// Submission holds the fields a shipper enters for a new product.
type Submission struct {
	Name              string  `json:"name" yaml:"name"`
	Price             float64 `json:"price" yaml:"price"`
	Category          string  `json:"category" yaml:"category"`
	CommissionPercent float64 `json:"commission" yaml:"commission"`
	Description       string  `json:"description" yaml:"description"`
	Image             string  `json:"image" yaml:"image"`
}

// Removal reports how many records a Remove deleted.
type Removal struct {
	Warehouse int
	Store     int
}

// Deps wires the pipeline.
type Deps struct {
	Store  *store.Store
	Clock  clock.Clock
	IDs    idgen.Generator
	Logger *zap.Logger
}

// Pipeline operates on warehouseProducts and storeProducts.
type Pipeline struct {
	store *store.Store
	clock clock.Clock
	ids   idgen.Generator
	log   *zap.Logger
}

// New constructs a Pipeline. Nil clock and generator default to the system
// clock and UUIDv7.
func New(deps Deps) (*Pipeline, error) {
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	p := &Pipeline{store: deps.Store, clock: deps.Clock, ids: deps.IDs, log: deps.Logger}
	if p.clock == nil {
		p.clock = clock.System{}
	}
	if p.ids == nil {
		p.ids = idgen.UUIDv7Generator{}
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	return p, nil
}

// Warehouse returns every warehouse product.
func (p *Pipeline) Warehouse(ctx context.Context) ([]model.WarehouseProduct, error) {
	return store.Read[model.WarehouseProduct](ctx, p.store, model.CollectionWarehouseProducts)
}

// StoreProducts returns every store listing across all stores.
func (p *Pipeline) StoreProducts(ctx context.Context) ([]model.StoreProduct, error) {
	return store.Read[model.StoreProduct](ctx, p.store, model.CollectionStoreProducts)
}

// Validate lists every offending field of a submission.
func (s Submission) Validate() error {
	var fields []string
	if strings.TrimSpace(s.Name) == "" {
		fields = append(fields, "name")
	}
	if math.IsNaN(s.Price) || math.IsInf(s.Price, 0) || s.Price < 0 {
		fields = append(fields, "price")
	}
	if math.IsNaN(s.CommissionPercent) || s.CommissionPercent < 0 || s.CommissionPercent > 100 {
		fields = append(fields, "commission")
	}
	if len(fields) > 0 {
		return apperr.Validation("Please fill in all product fields correctly", fields...)
	}
	return nil
}

// Submit adds a shipper's product to the warehouse with sold = 0.
func (p *Pipeline) Submit(ctx context.Context, sess model.UserSession, sub Submission) (model.WarehouseProduct, error) {
	if err := requireRole(sess, model.RoleShipper); err != nil {
		return model.WarehouseProduct{}, err
	}
	if err := sub.Validate(); err != nil {
		return model.WarehouseProduct{}, err
	}

	products, err := p.Warehouse(ctx)
	if err != nil {
		return model.WarehouseProduct{}, err
	}
	product := model.WarehouseProduct{
		ID:                p.ids.Generate(),
		Name:              strings.TrimSpace(sub.Name),
		Price:             sub.Price,
		Category:          strings.TrimSpace(sub.Category),
		CommissionPercent: sub.CommissionPercent,
		Description:       sub.Description,
		Image:             strings.TrimSpace(sub.Image),
		ShipperID:         sess.ID,
		ShipperName:       sess.Name,
		Sold:              0,
		CreatedAt:         p.clock.Now(),
	}
	products = append(products, product)
	if err := store.Write(ctx, p.store, model.CollectionWarehouseProducts, products); err != nil {
		return model.WarehouseProduct{}, err
	}
	p.log.Info("warehouse_product_submitted",
		zap.String("id", product.ID.String()),
		zap.String("shipper_id", sess.ID.String()),
	)
	return product, nil
}

// Promote lists a warehouse product in the manager's store at a 20% markup.
// At most one listing exists per (warehouse product, store).
func (p *Pipeline) Promote(ctx context.Context, sess model.UserSession, warehouseID identity.ID) (model.StoreProduct, error) {
	if err := requireRole(sess, model.RoleManager); err != nil {
		return model.StoreProduct{}, err
	}
	if sess.StoreID.IsZero() {
		return model.StoreProduct{}, apperr.Validation("manager has no store", "storeId")
	}

	warehouse, err := p.Warehouse(ctx)
	if err != nil {
		return model.StoreProduct{}, err
	}
	i := identity.Index(warehouse, warehouseKey, warehouseID)
	if i < 0 {
		return model.StoreProduct{}, apperr.NotFound("Product not found in warehouse!")
	}
	source := warehouse[i]

	listings, err := p.StoreProducts(ctx)
	if err != nil {
		return model.StoreProduct{}, err
	}
	for _, l := range listings {
		if identity.Same(l.WarehouseID, source.ID) && identity.Same(l.StoreID, sess.StoreID) {
			return model.StoreProduct{}, apperr.AlreadyPromoted("This product is already in your store!")
		}
	}

	listing := model.StoreProduct{
		ID:                p.ids.Generate(),
		WarehouseID:       source.ID,
		Name:              source.Name,
		Price:             money.ToFloat(money.Markup(source.Price)),
		OriginalPrice:     source.Price,
		Category:          source.Category,
		Description:       source.Description,
		Image:             source.Image,
		StoreID:           sess.StoreID,
		StoreName:         sess.StoreLabel(),
		ShipperID:         source.ShipperID,
		ShipperName:       source.ShipperName,
		CommissionPercent: source.CommissionPercent,
		CreatedAt:         p.clock.Now(),
	}
	listings = append(listings, listing)
	if err := store.Write(ctx, p.store, model.CollectionStoreProducts, listings); err != nil {
		return model.StoreProduct{}, err
	}
	p.log.Info("store_product_promoted",
		zap.String("id", listing.ID.String()),
		zap.String("warehouse_id", source.ID.String()),
		zap.String("store_id", sess.StoreID.String()),
	)
	return listing, nil
}

// Remove deletes a product.
//
// ScopeWarehouse deletes a shipper's own warehouse product and every store
// listing derived from it, in one batch. ScopeStore deletes one listing from
// the manager's own store and leaves the warehouse untouched.
func (p *Pipeline) Remove(ctx context.Context, sess model.UserSession, id identity.ID, scope Scope) (Removal, error) {
	switch scope {
	case ScopeWarehouse:
		return p.removeWarehouse(ctx, sess, id)
	case ScopeStore:
		return p.removeListing(ctx, sess, id)
	default:
		return Removal{}, apperr.Validation("unknown removal scope "+string(scope), "scope")
	}
}

func (p *Pipeline) removeWarehouse(ctx context.Context, sess model.UserSession, id identity.ID) (Removal, error) {
	if err := requireRole(sess, model.RoleShipper); err != nil {
		return Removal{}, err
	}
	warehouse, err := p.Warehouse(ctx)
	if err != nil {
		return Removal{}, err
	}
	owned := func(w model.WarehouseProduct) bool {
		return identity.Same(w.ID, id) && identity.Same(w.ShipperID, sess.ID)
	}
	keptWarehouse := identity.Filter(warehouse, func(w model.WarehouseProduct) bool { return !owned(w) })
	if len(keptWarehouse) == len(warehouse) {
		return Removal{}, apperr.NotFound("Product not found in warehouse!")
	}

	listings, err := p.StoreProducts(ctx)
	if err != nil {
		return Removal{}, err
	}
	keptListings := identity.Filter(listings, func(l model.StoreProduct) bool {
		return !identity.Same(l.WarehouseID, id)
	})

	b := p.store.Batch()
	store.Put(b, model.CollectionWarehouseProducts, keptWarehouse)
	store.Put(b, model.CollectionStoreProducts, keptListings)
	if err := b.Commit(ctx); err != nil {
		return Removal{}, err
	}

	r := Removal{Warehouse: len(warehouse) - len(keptWarehouse), Store: len(listings) - len(keptListings)}
	p.log.Info("warehouse_product_removed",
		zap.String("id", id.String()),
		zap.Int("cascaded_listings", r.Store),
	)
	return r, nil
}

func (p *Pipeline) removeListing(ctx context.Context, sess model.UserSession, id identity.ID) (Removal, error) {
	if err := requireRole(sess, model.RoleManager); err != nil {
		return Removal{}, err
	}
	listings, err := p.StoreProducts(ctx)
	if err != nil {
		return Removal{}, err
	}
	kept := identity.Filter(listings, func(l model.StoreProduct) bool {
		return !(identity.Same(l.ID, id) && identity.Same(l.StoreID, sess.StoreID))
	})
	if len(kept) == len(listings) {
		return Removal{}, apperr.NotFound("Product not found in your store!")
	}
	if err := store.Write(ctx, p.store, model.CollectionStoreProducts, kept); err != nil {
		return Removal{}, err
	}
	p.log.Info("store_product_removed", zap.String("id", id.String()), zap.String("store_id", sess.StoreID.String()))
	return Removal{Store: len(listings) - len(kept)}, nil
}

// RenameStore sets the manager's store name and rewrites it on every listing
// of that store. The session and the listings are committed together; the
// updated session is returned.
func (p *Pipeline) RenameStore(ctx context.Context, sess model.UserSession, newName string) (model.UserSession, error) {
	if err := requireRole(sess, model.RoleManager); err != nil {
		return model.UserSession{}, err
	}
	name := strings.TrimSpace(newName)
	if name == "" {
		return model.UserSession{}, apperr.Validation("Store name is required", "storeName")
	}

	listings, err := p.StoreProducts(ctx)
	if err != nil {
		return model.UserSession{}, err
	}
	renamed := 0
	for i := range listings {
		if identity.Same(listings[i].StoreID, sess.StoreID) {
			listings[i].StoreName = name
			renamed++
		}
	}

	sess.StoreName = name
	b := p.store.Batch()
	store.PutRecord(b, model.CollectionCurrentUser, sess)
	store.Put(b, model.CollectionStoreProducts, listings)
	if err := b.Commit(ctx); err != nil {
		return model.UserSession{}, err
	}
	p.log.Info("store_renamed", zap.String("store_id", sess.StoreID.String()), zap.Int("listings", renamed))
	return sess, nil
}

// CommissionEarned is price x commission/100 x sold. It is always derived.
func CommissionEarned(w model.WarehouseProduct) decimal.Decimal {
	return money.Commission(w.Price, w.CommissionPercent, w.Sold)
}

func requireRole(sess model.UserSession, role model.Role) error {
	if sess.ID.IsZero() {
		return apperr.NotLoggedIn()
	}
	if sess.Role != role {
		return apperr.RoleMismatch(string(sess.Role), string(role))
	}
	return nil
}

func warehouseKey(w model.WarehouseProduct) identity.ID { return w.ID }
