package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ergolife/storefront/internal/domain/cart"
	"github.com/ergolife/storefront/internal/domain/discount"
	"github.com/ergolife/storefront/internal/domain/user"
)

// DiscountEvaluator validates a discount code against a subtotal. It must be
// side-effect-free; usage accounting is the finalizer's responsibility.
type DiscountEvaluator interface {
	Evaluate(ctx context.Context, userID string, subtotal decimal.Decimal, rawCode string) (discount.Result, error)
}

// UsageIncrementer performs the conditional atomic usage increment for a
// redeemed discount.
type UsageIncrementer interface {
	IncrementUsage(ctx context.Context, id string) (bool, error)
}

// ConfirmationSender delivers the order-confirmation email.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, to string, o *Order) error
}

// CreateRequest holds the input for creating an order from the cart.
type CreateRequest struct {
	Name            string
	Phone           string
	InstallationFee decimal.Decimal
	DiscountCode    string
	Shipping        *ShippingUpdate
}

// Service orchestrates order creation and shipping updates. It owns the
// ordering contract of the creation pipeline: all business-rule failures are
// raised before any write, and once the order is persisted no follow-up
// failure reverses it.
type Service struct {
	assembler *Assembler
	evaluator DiscountEvaluator
	orders    Repository
	usage     UsageIncrementer
	carts     cart.Repository
	users     user.Repository
	mail      ConfirmationSender
	now       func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(
	assembler *Assembler,
	evaluator DiscountEvaluator,
	orders Repository,
	usage UsageIncrementer,
	carts cart.Repository,
	users user.Repository,
	mail ConfirmationSender,
) *Service {
	return &Service{
		assembler: assembler,
		evaluator: evaluator,
		orders:    orders,
		usage:     usage,
		carts:     carts,
		users:     users,
		mail:      mail,
		now:       time.Now,
	}
}

// Create converts the user's cart into a persisted order:
//
//  1. validate contact fields,
//  2. assemble the draft from the cart,
//  3. evaluate the discount code (abort with no writes on failure),
//  4. merge shipping fields onto the draft,
//  5. persist the order (durability boundary),
//  6. increment discount usage (best effort),
//  7. clear the cart,
//  8. dispatch the confirmation email (best effort, off the request path).
//
// The discount is validated strictly before persistence so an invalid code
// never produces a half-priced order; the cart is cleared strictly after
// persistence so a crash in between loses no order.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Order, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, ErrContactRequired
	}

	draft, err := s.assembler.Assemble(ctx, userID, req.InstallationFee, name, phone)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrCartEmpty
	}

	res, err := s.evaluator.Evaluate(ctx, userID, draft.Subtotal, req.DiscountCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		OrderNumber:     draft.OrderNumber,
		Name:            name,
		Phone:           phone,
		Status:          StatusProcessing,
		Subtotal:        draft.Subtotal,
		DiscountAmount:  res.Amount,
		DiscountCode:    res.Code,
		InstallationFee: draft.InstallationFee,
		Items:           draft.Items,
		Shipping:        draft.Shipping,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	// Creation merges shipping fields verbatim; the state machine is driven
	// only by the shipping-update operation.
	if req.Shipping != nil {
		if req.Shipping.DeliveryStatus != nil && !validDeliveryStatus(*req.Shipping.DeliveryStatus) {
			return nil, ErrInvalidDeliveryStatus
		}
		if req.Shipping.Address != nil {
			o.Shipping.Address = *req.Shipping.Address
		}
		if req.Shipping.TrackingNumber != nil {
			o.Shipping.TrackingNumber = *req.Shipping.TrackingNumber
		}
		if req.Shipping.DeliveryStatus != nil {
			o.Shipping.DeliveryStatus = *req.Shipping.DeliveryStatus
		}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	lg := zctx.From(ctx)

	if res.Applied != nil {
		ok, err := s.usage.IncrementUsage(ctx, res.Applied.ID)
		if err != nil {
			lg.Error("increment discount usage",
				zap.String("order_number", o.OrderNumber),
				zap.String("discount_code", res.Code),
				zap.Error(err),
			)
		} else if !ok {
			lg.Warn("discount usage limit exceeded after order creation",
				zap.String("order_number", o.OrderNumber),
				zap.String("discount_code", res.Code),
			)
		}
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}

	// The confirmation email is off the request path: a slow SMTP relay
	// must not delay the creation response. The detached context keeps the
	// send alive after the response is written; the deadline bounds how
	// long the goroutine can hold a connection.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), confirmationTimeout)
	go func() {
		defer cancel()
		s.sendConfirmation(sendCtx, o)
	}()
	return o, nil
}

const confirmationTimeout = 15 * time.Second

// sendConfirmation emails the order confirmation. Failures are logged and
// swallowed; the order is already durable.
func (s *Service) sendConfirmation(ctx context.Context, o *Order) {
	lg := zctx.From(ctx)

	u, err := s.users.GetByID(ctx, o.UserID)
	if err != nil {
		lg.Error("load user for order confirmation",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
		return
	}
	if u.Email == "" {
		return
	}
	if err := s.mail.SendOrderConfirmation(ctx, u.Email, o); err != nil {
		lg.Error("send order confirmation",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
	}
}

// GetByID returns one order scoped to its owner.
func (s *Service) GetByID(ctx context.Context, userID, orderID string) (*Order, error) {
	return s.orders.GetByID(ctx, userID, orderID)
}

// ListByUser returns the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Latest returns the user's most recent order, optionally filtered by status.
func (s *Service) Latest(ctx context.Context, userID string, status Status) (*Order, error) {
	return s.orders.Latest(ctx, userID, status)
}

// UpdateShipping applies a shipping patch to an existing order owned by the
// user and persists the result.
func (s *Service) UpdateShipping(ctx context.Context, userID, orderID string, upd ShippingUpdate) (*Order, error) {
	o, err := s.orders.GetByID(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.ApplyShippingUpdate(upd, s.now()); err != nil {
		return nil, err
	}
	o.UpdatedAt = s.now()

	if err := s.orders.UpdateShipping(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update shipping")
	}
	return o, nil
}
