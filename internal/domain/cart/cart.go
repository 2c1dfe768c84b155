package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for cart operations.
var (
	ErrNotFound        = errors.New("cart not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// Line references a product variant by id with a quantity. No price is
// stored here; prices are resolved at order time, not cart-edit time.
type Line struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// LineKey identifies a line within a cart.
type LineKey struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
}

// Cart holds a user's pending line items. A cart is owned by exactly one
// user and is cleared (emptied, not deleted) when an order is created.
type Cart struct {
	UserID    string
	Items     []Line
	UpdatedAt time.Time
}

// Repository defines persistence for carts. Save has upsert semantics:
// saving a cart for a user without one creates it.
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Clear(ctx context.Context, userID string) error
}
