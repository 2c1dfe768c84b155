package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/ergolife/storefront/internal/domain/catalog"
)

// Service encapsulates cart mutation logic.
type Service struct {
	carts    Repository
	products catalog.Repository
}

// NewService creates a cart Service.
func NewService(carts Repository, products catalog.Repository) *Service {
	return &Service{carts: carts, products: products}
}

// Get returns the user's cart, or an empty cart when none exists yet.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Cart{UserID: userID, Items: []Line{}}, nil
		}
		return nil, errors.Wrap(err, "get cart")
	}
	return c, nil
}

// AddItem adds a product variant to the cart, merging the quantity into an
// existing line for the same (product, variant) pair. The product and
// variant must exist at add time.
func (s *Service) AddItem(ctx context.Context, userID string, line Line) (*Cart, error) {
	if line.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if p.Variant(line.VariantID) == nil {
		return nil, catalog.ErrVariantNotFound
	}

	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if i := findLine(c.Items, line.ProductID, line.VariantID); i >= 0 {
		c.Items[i].Quantity += line.Quantity
	} else {
		c.Items = append(c.Items, line)
	}

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// UpdateItem replaces the quantity of an existing line.
func (s *Service) UpdateItem(ctx context.Context, userID string, key LineKey, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := findLine(c.Items, key.ProductID, key.VariantID)
	if i < 0 {
		return nil, ErrItemNotFound
	}
	c.Items[i].Quantity = quantity

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// RemoveItems deletes every line matching one of the given keys. Keys that
// match nothing are ignored.
func (s *Service) RemoveItems(ctx context.Context, userID string, keys []LineKey) (*Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Cart{UserID: userID, Items: []Line{}}, nil
		}
		return nil, err
	}

	kept := c.Items[:0]
	for _, item := range c.Items {
		if !matchesAny(item, keys) {
			kept = append(kept, item)
		}
	}
	c.Items = kept

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

func findLine(items []Line, productID, variantID string) int {
	for i, item := range items {
		if item.ProductID == productID && item.VariantID == variantID {
			return i
		}
	}
	return -1
}

func matchesAny(item Line, keys []LineKey) bool {
	for _, k := range keys {
		if item.ProductID == k.ProductID && item.VariantID == k.VariantID {
			return true
		}
	}
	return false
}
