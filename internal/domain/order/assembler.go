package order

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ergolife/storefront/internal/domain/cart"
	"github.com/ergolife/storefront/internal/domain/catalog"
)

// Draft is an in-memory, not-yet-persisted order assembled from cart state.
type Draft struct {
	UserID          string
	OrderNumber     string
	Name            string
	Phone           string
	Items           []Line
	Subtotal        decimal.Decimal
	InstallationFee decimal.Decimal
	Shipping        Shipping
}

// Assembler resolves cart lines against current catalog data into an order
// draft, capturing a denormalized snapshot per line.
type Assembler struct {
	carts    cart.Repository
	products catalog.Repository
	colors   catalog.ColorRepository
	now      func() time.Time
}

// NewAssembler creates an Assembler with the required read dependencies.
func NewAssembler(carts cart.Repository, products catalog.Repository, colors catalog.ColorRepository) *Assembler {
	return &Assembler{
		carts:    carts,
		products: products,
		colors:   colors,
		now:      time.Now,
	}
}

// Assemble builds a draft from the user's cart. It returns (nil, nil) when
// the cart is absent, empty, or when every line references a product or
// variant that no longer exists; stale lines degrade gracefully by being
// skipped rather than aborting the whole order.
func (a *Assembler) Assemble(ctx context.Context, userID string, installationFee decimal.Decimal, name, phone string) (*Draft, error) {
	c, err := a.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get cart")
	}
	if len(c.Items) == 0 {
		return nil, nil
	}

	items := make([]Line, 0, len(c.Items))
	for _, ci := range c.Items {
		p, err := a.products.GetByID(ctx, ci.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				continue
			}
			return nil, errors.Wrapf(err, "get product %s", ci.ProductID)
		}
		v := p.Variant(ci.VariantID)
		if v == nil {
			continue
		}

		items = append(items, Line{
			ProductID:   p.ID,
			ProductName: p.Name,
			VariantID:   v.ID,
			Quantity:    ci.Quantity,
			Price:       v.Price,
			Trial:       v.Trial,
			ColorName:   a.resolveColorName(ctx, v.ColorID),
			Image:       resolveImage(v, p),
		})
	}
	if len(items) == 0 {
		return nil, nil
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	return &Draft{
		UserID:          userID,
		OrderNumber:     generateOrderNumber(a.now()),
		Name:            name,
		Phone:           phone,
		Items:           items,
		Subtotal:        subtotal,
		InstallationFee: installationFee,
		Shipping:        Shipping{DeliveryStatus: DeliveryPending},
	}, nil
}

// resolveColorName looks up the color's display label, falling back to the
// raw color id when the reference cannot be resolved.
func (a *Assembler) resolveColorName(ctx context.Context, colorID string) string {
	col, err := a.colors.GetColorByID(ctx, colorID)
	if err != nil || col == nil {
		return colorID
	}
	return col.NameEN
}

// resolveImage picks the snapshot image URL by priority: variant image,
// then the product's first general image, then its first thumbnail.
func resolveImage(v *catalog.Variant, p *catalog.Product) string {
	if v.Image != nil && v.Image.URL != "" {
		return v.Image.URL
	}
	if len(p.Images) > 0 && p.Images[0].URL != "" {
		return p.Images[0].URL
	}
	if len(p.Thumbnails) > 0 && p.Thumbnails[0].URL != "" {
		return p.Thumbnails[0].URL
	}
	return ""
}

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// generateOrderNumber builds a human-traceable order number from the
// creation timestamp and a short random suffix. The unique index on
// order_number is the authoritative collision guard.
func generateOrderNumber(now time.Time) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(suffixAlphabet))))
		if err != nil {
			// crypto/rand failing is unrecoverable in practice; degrade to
			// a timestamp-derived digit rather than panicking.
			suffix[i] = suffixAlphabet[now.UnixNano()%int64(len(suffixAlphabet))]
			continue
		}
		suffix[i] = suffixAlphabet[n.Int64()]
	}
	return fmt.Sprintf("INV-%d-%s", now.UnixMilli(), suffix)
}
