// Package seed loads the sample catalog shown on a fresh storefront.
//
// The catalog is written in CUE so the schema (#Product) and the data are
// unified at load time; a malformed entry fails Load rather than reaching
// a page.
package seed

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/model"
)

//go:embed catalog.cue
var catalogCUE string

// Product is one sample listing.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Store       string  `json:"store"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Rating      int     `json:"rating"`
}

// StoreProduct converts the sample into a store listing shape.
func (p Product) StoreProduct() model.StoreProduct {
	return model.StoreProduct{
		ID:            identity.Normalize(p.ID),
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: p.Price,
		Category:      p.Category,
		Description:   p.Description,
		Image:         p.Image,
		StoreName:     p.Store,
	}
}

var (
	loadOnce sync.Once
	loaded   []Product
	loadErr  error
)

// Load returns the embedded sample catalog. The result is cached; callers
// get their own copy.
func Load() ([]Product, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(catalogCUE)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return append([]Product(nil), loaded...), nil
}

// Parse compiles a CUE catalog source and decodes its products list.
func Parse(src string) ([]Product, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("catalog.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile seed catalog: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate seed catalog: %w", err)
	}

	list := v.LookupPath(cue.ParsePath("products"))
	if !list.Exists() {
		return nil, fmt.Errorf("seed catalog: products not defined")
	}
	var products []Product
	if err := list.Decode(&products); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	return products, nil
}

// StoreProducts returns the sample catalog as store listings.
func StoreProducts() ([]model.StoreProduct, error) {
	products, err := Load()
	if err != nil {
		return nil, err
	}
	out := make([]model.StoreProduct, len(products))
	for i, p := range products {
		out[i] = p.StoreProduct()
	}
	return out, nil
}
