package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation errors for discount creation.
var (
	ErrCodeRequired  = errors.New("code required")
	ErrInvalidType   = errors.New("type must be 'percentage' or 'fixed'")
	ErrInvalidValue  = errors.New("value must be greater than 0")
	ErrInvalidWindow = errors.New("startDate must be before endDate")
)

// CreateInput holds the admin-supplied fields for a new discount.
type CreateInput struct {
	UserID         *string
	Code           string
	Description    string
	Type           Type
	Value          decimal.Decimal
	MaxDiscount    *decimal.Decimal
	MinOrderAmount *decimal.Decimal
	UsageLimit     int
	StartDate      time.Time
	EndDate        time.Time
	IsGlobal       bool
}

// Service covers discount administration: creation with validation, and
// listing with validity annotation.
type Service struct {
	discounts Repository
	now       func() time.Time
}

// NewService creates a discount Service.
func NewService(discounts Repository) *Service {
	return &Service{discounts: discounts, now: time.Now}
}

// Create validates and persists a new discount. The code is normalized
// before storage. A global discount has no user scope, and a discount
// submitted without a user scope is stored as global.
func (s *Service) Create(ctx context.Context, in CreateInput) (*UserDiscount, error) {
	code := NormalizeCode(in.Code)
	if code == "" {
		return nil, ErrCodeRequired
	}
	if in.Type != TypePercentage && in.Type != TypeFixed {
		return nil, ErrInvalidType
	}
	if !in.Value.IsPositive() {
		return nil, ErrInvalidValue
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || !in.StartDate.Before(in.EndDate) {
		return nil, ErrInvalidWindow
	}

	usageLimit := in.UsageLimit
	if usageLimit <= 0 {
		usageLimit = 1
	}

	// A discount is either scoped to one user or global; a row with
	// neither scope nor the global flag would be redeemable by nobody.
	userID := in.UserID
	isGlobal := in.IsGlobal
	if isGlobal {
		userID = nil
	}
	if userID == nil {
		isGlobal = true
	}

	d := &UserDiscount{
		ID:             uuid.New().String(),
		UserID:         userID,
		Code:           code,
		Description:    in.Description,
		Type:           in.Type,
		Value:          in.Value,
		MaxDiscount:    in.MaxDiscount,
		MinOrderAmount: in.MinOrderAmount,
		UsageLimit:     usageLimit,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		IsGlobal:       isGlobal,
		CreatedAt:      s.now(),
	}
	if err := s.discounts.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Annotated pairs a discount with its validity at listing time.
type Annotated struct {
	UserDiscount
	Status
}

// ListForUser returns the user's own and global discounts, each annotated
// with whether it is currently redeemable.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Annotated, error) {
	items, err := s.discounts.ListForUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list discounts")
	}

	now := s.now()
	out := make([]Annotated, len(items))
	for i, d := range items {
		out[i] = Annotated{UserDiscount: d, Status: d.StatusAt(now)}
	}
	return out, nil
}
