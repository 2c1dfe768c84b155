package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the order-level state, kept in lockstep with the shipping
// delivery status and never set directly by clients.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusComplete   Status = "Complete"
)

// DeliveryStatus is the shipping-level state driven by shipping updates.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "Pending"
	DeliveryShipped   DeliveryStatus = "Shipped"
	DeliveryDelivered DeliveryStatus = "Delivered"
)

// Sentinel errors for order operations.
var (
	ErrNotFound              = errors.New("order not found")
	ErrCartEmpty             = errors.New("cart empty or invalid")
	ErrContactRequired       = errors.New("name and phone are required")
	ErrInvalidDeliveryStatus = errors.New("invalid deliveryStatus")
	ErrDuplicateOrderNumber  = errors.New("duplicate order number")
)

// Line is the denormalized snapshot of one cart line captured at order
// creation. Later edits to the product must not change historical orders,
// so it shares no schema with the live catalog types.
type Line struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	VariantID   string          `json:"variantId"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Trial       bool            `json:"trial"`
	ColorName   string          `json:"variantOption"`
	Image       string          `json:"image"`
}

// Shipping is the one mutable sub-record of an order.
type Shipping struct {
	Address        string         `json:"address"`
	TrackingNumber string         `json:"trackingNumber"`
	DeliveryStatus DeliveryStatus `json:"deliveryStatus"`
	ShippedAt      *time.Time     `json:"shippedAt"`
	DeliveredAt    *time.Time     `json:"deliveredAt"`
}

// Order is immutable once created except for Shipping and the derived
// Status. OrderNumber is unique and never reused.
type Order struct {
	ID              string
	UserID          string
	OrderNumber     string
	Name            string
	Phone           string
	Status          Status
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountCode    string
	InstallationFee decimal.Decimal
	Items           []Line
	Shipping        Shipping
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Total returns subtotal - discount + installation fee.
func (o *Order) Total() decimal.Decimal {
	return o.Subtotal.Sub(o.DiscountAmount).Add(o.InstallationFee)
}

// ShippingUpdate is a partial patch of the shipping sub-record. Nil fields
// are left untouched.
type ShippingUpdate struct {
	Address        *string
	TrackingNumber *string
	DeliveryStatus *DeliveryStatus
}

// ApplyShippingUpdate patches the order's shipping sub-record and keeps the
// order status in lockstep with the delivery status:
//
//	Pending   -> Processing
//	Shipped   -> Shipped  (stamps shippedAt if unset)
//	Delivered -> Complete (back-fills shippedAt, stamps deliveredAt)
func (o *Order) ApplyShippingUpdate(upd ShippingUpdate, now time.Time) error {
	if upd.DeliveryStatus != nil && !validDeliveryStatus(*upd.DeliveryStatus) {
		return ErrInvalidDeliveryStatus
	}

	if upd.Address != nil {
		o.Shipping.Address = *upd.Address
	}
	if upd.TrackingNumber != nil {
		o.Shipping.TrackingNumber = *upd.TrackingNumber
	}

	if upd.DeliveryStatus == nil {
		return nil
	}

	o.Shipping.DeliveryStatus = *upd.DeliveryStatus
	switch *upd.DeliveryStatus {
	case DeliveryPending:
		o.Status = StatusProcessing
	case DeliveryShipped:
		if o.Shipping.ShippedAt == nil {
			o.Shipping.ShippedAt = &now
		}
		o.Status = StatusShipped
	case DeliveryDelivered:
		if o.Shipping.ShippedAt == nil {
			o.Shipping.ShippedAt = &now
		}
		o.Shipping.DeliveredAt = &now
		o.Status = StatusComplete
	}
	return nil
}

func validDeliveryStatus(s DeliveryStatus) bool {
	switch s {
	case DeliveryPending, DeliveryShipped, DeliveryDelivered:
		return true
	}
	return false
}

// Repository defines persistence for orders. Create is the durability
// boundary of the creation pipeline; the storage layer enforces order
// number uniqueness and returns ErrDuplicateOrderNumber on collision.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, userID, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// Latest returns the user's most recent order, optionally filtered by
	// status (empty string means any). Returns ErrNotFound when none.
	Latest(ctx context.Context, userID string, status Status) (*Order, error)
	// UpdateShipping persists the shipping sub-record and derived status.
	UpdateShipping(ctx context.Context, o *Order) error
}
