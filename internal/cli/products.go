package cli

import (
	"context"

	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/seed"
	"github.com/roach88/shopsync/internal/store"
)

// ProductFlags describe a product card on the command line. Anything left
// empty is filled from the catalog entry with the same id.
type ProductFlags struct {
	Name     string
	Price    float64
	Image    string
	Category string
	Store    string
}

// lookupProduct finds the card a page would show for id: store listings
// first (the sample catalog until listings exist), then the warehouse.
func lookupProduct(ctx context.Context, st *store.Store, id identity.ID) (model.ProductRef, bool, error) {
	exists, err := st.Exists(ctx, model.CollectionStoreProducts)
	if err != nil {
		return model.ProductRef{}, false, err
	}
	var listings []model.StoreProduct
	if exists {
		listings, err = store.Read[model.StoreProduct](ctx, st, model.CollectionStoreProducts)
	} else {
		listings, err = seed.StoreProducts()
	}
	if err != nil {
		return model.ProductRef{}, false, err
	}
	for _, l := range listings {
		if identity.Same(l.ID, id) {
			return model.RefFromStore(l), true, nil
		}
	}

	warehouse, err := store.Read[model.WarehouseProduct](ctx, st, model.CollectionWarehouseProducts)
	if err != nil {
		return model.ProductRef{}, false, err
	}
	for _, w := range warehouse {
		if identity.Same(w.ID, id) {
			return model.ProductRef{
				ID:          w.ID,
				Name:        w.Name,
				Price:       w.Price,
				Image:       w.Image,
				Category:    w.Category,
				ShipperName: w.ShipperName,
			}, true, nil
		}
	}
	return model.ProductRef{}, false, nil
}

// productRef resolves the payload for id, with flags taking precedence.
func productRef(ctx context.Context, st *store.Store, raw string, f ProductFlags) (model.ProductRef, error) {
	id := identity.Normalize(raw)
	ref, _, err := lookupProduct(ctx, st, id)
	if err != nil {
		return model.ProductRef{}, err
	}
	ref.ID = id
	if f.Name != "" {
		ref.Name = f.Name
	}
	if f.Price != 0 {
		ref.Price = f.Price
	}
	if f.Image != "" {
		ref.Image = f.Image
	}
	if f.Category != "" {
		ref.Category = f.Category
	}
	if f.Store != "" {
		ref.Store = f.Store
	}
	return ref, nil
}
