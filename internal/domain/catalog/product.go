package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog lookups.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
)

// Image holds a stored image reference.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
}

// Variant is a purchasable configuration of a product. It lives embedded in
// its parent product but keeps a stable id so carts and orders can reference
// it durably while its mutable fields (price, stock) change.
type Variant struct {
	ID              string          `json:"variantId"`
	ColorID         string          `json:"colorId"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantityInStock"`
	Trial           bool            `json:"trial"`
	Image           *Image          `json:"image,omitempty"`
}

// Product represents a catalog item with its embedded variants.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	Material    string
	Images      []Image
	Thumbnails  []Image
	Variants    []Variant
}

// Variant returns the embedded variant with the given id, or nil.
func (p *Product) Variant(id string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// Repository defines the point-in-time catalog reads the order pipeline
// consumes. Values returned are current field values, never cached.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
}
