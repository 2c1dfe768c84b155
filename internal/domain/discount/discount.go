package discount

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage applies a percentage of the subtotal, optionally
	// capped at MaxDiscount.
	TypePercentage Type = "percentage"
	// TypeFixed applies a fixed monetary amount.
	TypeFixed Type = "fixed"
)

// Machine-readable reasons for discount rejection, carried on the wire so
// clients can render a specific message.
const (
	ReasonInvalid    = "DISCOUNT_INVALID"
	ReasonNotStarted = "DISCOUNT_NOT_STARTED"
	ReasonExpired    = "DISCOUNT_EXPIRED"
	ReasonUsageLimit = "DISCOUNT_USAGE_LIMIT"
	ReasonMinAmount  = "DISCOUNT_MIN_AMOUNT"
)

// Sentinel errors for discount persistence.
var (
	ErrNotFound      = errors.New("discount not found")
	ErrDuplicateCode = errors.New("discount code already exists")
)

// Error is a business-rule rejection of a discount code. It carries the
// machine-readable reason and, for ReasonMinAmount, the required minimum.
type Error struct {
	Reason         string
	Message        string
	MinOrderAmount *decimal.Decimal
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// AsError unwraps err into a *Error, or nil when it is not one.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// UserDiscount is a coupon, either scoped to one user (UserID set) or
// global (UserID nil, IsGlobal true). Its code is unique per user scope.
type UserDiscount struct {
	ID             string
	UserID         *string
	Code           string
	Description    string
	Type           Type
	Value          decimal.Decimal
	MaxDiscount    *decimal.Decimal
	MinOrderAmount *decimal.Decimal
	UsageLimit     int
	UsedCount      int
	StartDate      time.Time
	EndDate        time.Time
	IsGlobal       bool
	CreatedAt      time.Time
}

// Status describes whether a discount is currently redeemable, and why not.
type Status struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason"`
}

// StatusAt reports the discount's redeemability at the given instant,
// mirroring the evaluator's ordered checks.
func (d *UserDiscount) StatusAt(now time.Time) Status {
	switch {
	case now.After(d.EndDate):
		return Status{InvalidReason: "expired"}
	case now.Before(d.StartDate):
		return Status{InvalidReason: "not_started"}
	case d.UsedCount >= d.UsageLimit:
		return Status{InvalidReason: "usage_limit_reached"}
	default:
		return Status{IsValid: true}
	}
}

// NormalizeCode canonicalizes a raw discount code: trim then uppercase.
// It is idempotent.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Repository defines persistence for discounts. IncrementUsage is the one
// cross-user mutation in the system and must be a single conditional atomic
// operation: it succeeds only while used_count remains below usage_limit.
type Repository interface {
	// FindByCode matches a discount whose code equals the normalized code
	// and which is either scoped to userID or global. Returns ErrNotFound
	// when no such discount exists.
	FindByCode(ctx context.Context, userID, code string) (*UserDiscount, error)
	// ListForUser returns the user's own discounts plus global ones,
	// newest first.
	ListForUser(ctx context.Context, userID string) ([]UserDiscount, error)
	// Create inserts a discount. Returns ErrDuplicateCode on a (code,
	// user scope) conflict.
	Create(ctx context.Context, d *UserDiscount) error
	// IncrementUsage atomically increments used_count for the discount row
	// while it is still under its usage limit. It reports whether a row
	// was updated.
	IncrementUsage(ctx context.Context, id string) (bool, error)
}
