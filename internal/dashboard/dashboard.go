// Package dashboard derives per-role views from the shared collections.
//
// Every projection is read-only, tolerates absent collections and imposes
// its own order where one is shown; nothing relies on storage order beyond
// "first N" lists, which follow insertion order by definition.
package dashboard

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/catalog"
	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/seed"
	"github.com/roach88/shopsync/internal/store"
)

const (
	recommendedLimit = 4
	featuredLimit    = 4
	shortIDLength    = 8
	warehouseLabel   = "Warehouse"
)

// OrderRow is an order as listed on the customer dashboard.
type OrderRow struct {
	model.Order
	ShortID string `json:"shortId"`
}

// CustomerView is the customer dashboard.
type CustomerView struct {
	User        model.UserSession    `json:"user"`
	Orders      []OrderRow           `json:"orders"`
	Recommended []model.StoreProduct `json:"recommended"`
}

// ManagerView is the store manager dashboard.
type ManagerView struct {
	User         model.UserSession        `json:"user"`
	StoreName    string                   `json:"storeName"`
	ProductCount int                      `json:"productCount"`
	Warehouse    []model.WarehouseProduct `json:"warehouse"`
	Listings     []model.StoreProduct     `json:"listings"`
}

// ShipperProduct is a warehouse product with its derived commission.
type ShipperProduct struct {
	model.WarehouseProduct
	Earned decimal.Decimal `json:"earned"`
}

// ShipperView is the shipper dashboard.
type ShipperView struct {
	User            model.UserSession `json:"user"`
	ProductCount    int               `json:"productCount"`
	Products        []ShipperProduct  `json:"products"`
	TotalCommission decimal.Decimal   `json:"totalCommission"`
}

// FeaturedProduct is a homepage card.
type FeaturedProduct struct {
	ID            identity.ID `json:"id"`
	Name          string      `json:"name"`
	Price         float64     `json:"price"`
	Image         string      `json:"image,omitempty"`
	Category      string      `json:"category,omitempty"`
	Store         string      `json:"store"`
	FromWarehouse bool        `json:"fromWarehouse"`
}

// Ref is the payload an add-to-cart or wishlist intent carries for this card.
func (f FeaturedProduct) Ref() model.ProductRef {
	return model.ProductRef{
		ID:       f.ID,
		Name:     f.Name,
		Price:    f.Price,
		Image:    f.Image,
		Category: f.Category,
		Store:    f.Store,
	}
}

// Dashboard holds exactly one role view.
type Dashboard struct {
	Role     model.Role    `json:"role"`
	Customer *CustomerView `json:"customer,omitempty"`
	Manager  *ManagerView  `json:"manager,omitempty"`
	Shipper  *ShipperView  `json:"shipper,omitempty"`
}

// View computes dashboards from a store.
type View struct {
	store *store.Store
}

// New constructs a View.
func New(s *store.Store) *View {
	return &View{store: s}
}

// For dispatches on the session role.
func (v *View) For(ctx context.Context, sess model.UserSession) (Dashboard, error) {
	d := Dashboard{Role: sess.Role}
	switch sess.Role {
	case model.RoleCustomer:
		c, err := v.Customer(ctx, sess)
		if err != nil {
			return Dashboard{}, err
		}
		d.Customer = &c
	case model.RoleManager:
		m, err := v.Manager(ctx, sess)
		if err != nil {
			return Dashboard{}, err
		}
		d.Manager = &m
	case model.RoleShipper:
		s, err := v.Shipper(ctx, sess)
		if err != nil {
			return Dashboard{}, err
		}
		d.Shipper = &s
	default:
		return Dashboard{}, apperr.RoleMismatch(string(sess.Role), string(model.RoleCustomer), string(model.RoleManager), string(model.RoleShipper))
	}
	return d, nil
}

// Customer lists the user's orders newest first and recommends the first
// store listings.
func (v *View) Customer(ctx context.Context, sess model.UserSession) (CustomerView, error) {
	orders, err := store.Read[model.Order](ctx, v.store, model.CollectionOrders)
	if err != nil {
		return CustomerView{}, err
	}
	listings, err := store.Read[model.StoreProduct](ctx, v.store, model.CollectionStoreProducts)
	if err != nil {
		return CustomerView{}, err
	}

	rows := []OrderRow{}
	for _, o := range orders {
		if identity.Same(o.UserID, sess.ID) {
			rows = append(rows, OrderRow{Order: o, ShortID: "#" + o.ID.Short(shortIDLength)})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date.Time)
	})

	return CustomerView{
		User:        sess,
		Orders:      rows,
		Recommended: firstN(listings, recommendedLimit),
	}, nil
}

// Manager shows the whole warehouse and the manager's own listings.
func (v *View) Manager(ctx context.Context, sess model.UserSession) (ManagerView, error) {
	warehouse, err := store.Read[model.WarehouseProduct](ctx, v.store, model.CollectionWarehouseProducts)
	if err != nil {
		return ManagerView{}, err
	}
	listings, err := store.Read[model.StoreProduct](ctx, v.store, model.CollectionStoreProducts)
	if err != nil {
		return ManagerView{}, err
	}
	own := identity.Filter(listings, func(l model.StoreProduct) bool {
		return identity.Same(l.StoreID, sess.StoreID)
	})
	return ManagerView{
		User:         sess,
		StoreName:    sess.StoreLabel(),
		ProductCount: len(own),
		Warehouse:    warehouse,
		Listings:     own,
	}, nil
}

// Shipper shows the shipper's own warehouse products with commission earned.
func (v *View) Shipper(ctx context.Context, sess model.UserSession) (ShipperView, error) {
	warehouse, err := store.Read[model.WarehouseProduct](ctx, v.store, model.CollectionWarehouseProducts)
	if err != nil {
		return ShipperView{}, err
	}
	products := []ShipperProduct{}
	total := decimal.Zero
	for _, w := range warehouse {
		if !identity.Same(w.ShipperID, sess.ID) {
			continue
		}
		earned := catalog.CommissionEarned(w)
		total = total.Add(earned)
		products = append(products, ShipperProduct{WarehouseProduct: w, Earned: earned})
	}
	return ShipperView{
		User:            sess,
		ProductCount:    len(products),
		Products:        products,
		TotalCommission: total,
	}, nil
}

// Featured returns the first homepage cards: store listings followed by
// warehouse products. Until storeProducts has ever been written the sample
// catalog stands in for it.
func (v *View) Featured(ctx context.Context) ([]FeaturedProduct, error) {
	exists, err := v.store.Exists(ctx, model.CollectionStoreProducts)
	if err != nil {
		return nil, err
	}
	var listings []model.StoreProduct
	if exists {
		listings, err = store.Read[model.StoreProduct](ctx, v.store, model.CollectionStoreProducts)
	} else {
		listings, err = seed.StoreProducts()
	}
	if err != nil {
		return nil, err
	}
	warehouse, err := store.Read[model.WarehouseProduct](ctx, v.store, model.CollectionWarehouseProducts)
	if err != nil {
		return nil, err
	}

	cards := make([]FeaturedProduct, 0, featuredLimit)
	for _, l := range listings {
		if len(cards) == featuredLimit {
			return cards, nil
		}
		cards = append(cards, FeaturedProduct{
			ID:       l.ID,
			Name:     l.Name,
			Price:    l.Price,
			Image:    l.Image,
			Category: l.Category,
			Store:    l.StoreName,
		})
	}
	for _, w := range warehouse {
		if len(cards) == featuredLimit {
			break
		}
		label := w.ShipperName
		if label == "" {
			label = warehouseLabel
		}
		cards = append(cards, FeaturedProduct{
			ID:            w.ID,
			Name:          w.Name,
			Price:         w.Price,
			Image:         w.Image,
			Category:      w.Category,
			Store:         label,
			FromWarehouse: true,
		})
	}
	return cards, nil
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
