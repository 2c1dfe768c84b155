// Package review implements product reviews with a one-review-per-user rule.
package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// Review is a single user's rating and comment on a product.
type Review struct {
	ID        string    `json:"reviewId"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary aggregates ratings for a product.
type Summary struct {
	Average float64 `json:"averageRating"`
	Count   int     `json:"count"`
}

// Repository persists reviews.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
}
