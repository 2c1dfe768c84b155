package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Result holds the outcome of evaluating a discount code against a subtotal.
// Applied is nil when no code was supplied.
type Result struct {
	Amount  decimal.Decimal
	Code    string
	Applied *UserDiscount
}

// Evaluator validates a discount code for a user and subtotal and computes
// the discount amount. It is side-effect-free: usage accounting happens only
// after an order is durably created, so callers may evaluate speculatively
// (e.g. for a price preview) without consuming usage.
type Evaluator struct {
	discounts Repository
	now       func() time.Time
}

// NewEvaluator creates an Evaluator backed by the given repository.
func NewEvaluator(discounts Repository) *Evaluator {
	return &Evaluator{discounts: discounts, now: time.Now}
}

// Evaluate validates rawCode and computes the discount amount for subtotal.
// An empty or blank code yields a zero Result without any lookup. Rejections
// are returned as *Error with the machine-readable reason; the first failing
// check wins.
func (e *Evaluator) Evaluate(ctx context.Context, userID string, subtotal decimal.Decimal, rawCode string) (Result, error) {
	code := NormalizeCode(rawCode)
	if code == "" {
		return Result{Amount: decimal.Zero}, nil
	}

	d, err := e.discounts.FindByCode(ctx, userID, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Result{}, &Error{Reason: ReasonInvalid, Message: "Invalid discount code"}
		}
		return Result{}, errors.Wrap(err, "lookup discount")
	}

	now := e.now()
	switch {
	case now.Before(d.StartDate):
		return Result{}, &Error{Reason: ReasonNotStarted, Message: "Discount not yet active"}
	case now.After(d.EndDate):
		return Result{}, &Error{Reason: ReasonExpired, Message: "Discount expired"}
	case d.UsedCount >= d.UsageLimit:
		return Result{}, &Error{Reason: ReasonUsageLimit, Message: "Discount usage limit reached"}
	case d.MinOrderAmount != nil && subtotal.LessThan(*d.MinOrderAmount):
		minAmount := *d.MinOrderAmount
		return Result{}, &Error{
			Reason:         ReasonMinAmount,
			Message:        fmt.Sprintf("Minimum order amount for this code is %s", minAmount),
			MinOrderAmount: &minAmount,
		}
	}

	amount := computeAmount(d, subtotal)
	return Result{Amount: amount, Code: code, Applied: d}, nil
}

// computeAmount applies the discount's strategy to the subtotal. The result
// is floored at zero and capped at the subtotal so a discount can never
// produce a negative total.
func computeAmount(d *UserDiscount, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch d.Type {
	case TypePercentage:
		amount = subtotal.Mul(d.Value).Div(hundred)
		if d.MaxDiscount != nil {
			amount = decimal.Min(amount, *d.MaxDiscount)
		}
	case TypeFixed:
		amount = d.Value
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return decimal.Min(amount, subtotal).Round(2)
}
