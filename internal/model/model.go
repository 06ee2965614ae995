// Package model holds the persisted record shapes shared by every engine.
//
// JSON field names are fixed by state already stored in the wild and must not
// change: warehouse and store products use "commission" and "store", not the
// longer names the Go fields carry.
package model

import (
	"time"

	"github.com/roach88/shopsync/internal/identity"
)

// Collection names the medium keys records under.
const (
	CollectionCart              = "cart"
	CollectionWishlist          = "wishlist"
	CollectionWarehouseProducts = "warehouseProducts"
	CollectionStoreProducts     = "storeProducts"
	CollectionCurrentUser       = "currentUser"
	CollectionOrders            = "orders"
)

// Collections lists every collection the storefront knows, in export order.
var Collections = []string{
	CollectionCart,
	CollectionWishlist,
	CollectionWarehouseProducts,
	CollectionStoreProducts,
	CollectionCurrentUser,
	CollectionOrders,
}

// Role is the session role.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleShipper  Role = "shipper"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleManager, RoleShipper:
		return true
	}
	return false
}

// CartEntry is one cart line.
type CartEntry struct {
	ID       identity.ID `json:"id"`
	Name     string      `json:"name"`
	Price    float64     `json:"price"`
	Image    string      `json:"image,omitempty"`
	Quantity int         `json:"quantity"`
}

// WishlistEntry is one saved product.
type WishlistEntry struct {
	ID       identity.ID `json:"id"`
	Name     string      `json:"name"`
	Price    float64     `json:"price"`
	Image    string      `json:"image,omitempty"`
	Category string      `json:"category"`
	Store    string      `json:"store"`
	AddedAt  time.Time   `json:"addedAt"`
}

// WarehouseProduct is a shipper submission awaiting (or past) promotion.
type WarehouseProduct struct {
	ID                identity.ID `json:"id"`
	Name              string      `json:"name"`
	Price             float64     `json:"price"`
	Category          string      `json:"category"`
	CommissionPercent float64     `json:"commission"`
	Description       string      `json:"description"`
	Image             string      `json:"image,omitempty"`
	ShipperID         identity.ID `json:"shipperId"`
	ShipperName       string      `json:"shipperName"`
	Sold              int         `json:"sold"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// StoreProduct is a warehouse product listed in a manager's store at markup.
type StoreProduct struct {
	ID                identity.ID `json:"id"`
	WarehouseID       identity.ID `json:"warehouseId"`
	Name              string      `json:"name"`
	Price             float64     `json:"price"`
	OriginalPrice     float64     `json:"originalPrice"`
	Category          string      `json:"category"`
	Description       string      `json:"description"`
	Image             string      `json:"image,omitempty"`
	StoreID           identity.ID `json:"storeId"`
	StoreName         string      `json:"store"`
	ShipperID         identity.ID `json:"shipperId"`
	ShipperName       string      `json:"shipperName"`
	CommissionPercent float64     `json:"commission"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// UserSession is the logged-in user.
type UserSession struct {
	ID        identity.ID `json:"id"`
	Name      string      `json:"name"`
	Role      Role        `json:"role"`
	StoreID   identity.ID `json:"storeId,omitempty"`
	StoreName string      `json:"storeName,omitempty"`
}

// Order is read-only input produced outside this core.
type Order struct {
	ID     identity.ID `json:"id"`
	UserID identity.ID `json:"userId"`
	Date   Timestamp   `json:"date"`
	Total  float64     `json:"total"`
	Status string      `json:"status"`
}

// ProductRef is the structured payload an add-to-cart or toggle-wishlist
// intent carries. Store and ShipperName feed the wishlist store label.
type ProductRef struct {
	ID          identity.ID `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Price       float64     `json:"price" yaml:"price"`
	Image       string      `json:"image,omitempty" yaml:"image,omitempty"`
	Category    string      `json:"category,omitempty" yaml:"category,omitempty"`
	Store       string      `json:"store,omitempty" yaml:"store,omitempty"`
	ShipperName string      `json:"shipperName,omitempty" yaml:"shipperName,omitempty"`
	Quantity    int         `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

// RefFromStore builds the payload a store product card carries.
func RefFromStore(p StoreProduct) ProductRef {
	return ProductRef{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.Image,
		Category:    p.Category,
		Store:       p.StoreName,
		ShipperName: p.ShipperName,
	}
}

// DefaultStoreName is the store name a manager has before renaming it.
func DefaultStoreName(userName string) string {
	return userName + "'s Store"
}

// StoreLabel returns the session's store name, or the default for its user.
func (u UserSession) StoreLabel() string {
	if u.StoreName != "" {
		return u.StoreName
	}
	return DefaultStoreName(u.Name)
}
