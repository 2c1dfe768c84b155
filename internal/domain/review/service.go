package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/ergolife/storefront/internal/domain/catalog"
)

// Service validates and records product reviews.
type Service struct {
	reviews  Repository
	products catalog.Repository
	now      func() time.Time
}

// NewService creates a review Service.
func NewService(reviews Repository, products catalog.Repository) *Service {
	return &Service{
		reviews:  reviews,
		products: products,
		now:      time.Now,
	}
}

// CreateInput carries a new review submission.
type CreateInput struct {
	ProductID string
	UserID    string
	Rating    int
	Comment   string
}

// Create records a review after checking the rating range and that the
// product exists. A second review for the same product by the same user
// fails with ErrAlreadyReviewed.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, err
	}

	r := &Review{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		UserID:    in.UserID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.now().UTC(),
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			return nil, ErrAlreadyReviewed
		}
		return nil, errors.Wrap(err, "create review")
	}
	return r, nil
}

// ListByProduct returns all reviews for a product with an aggregate summary.
func (s *Service) ListByProduct(ctx context.Context, productID string) ([]Review, Summary, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, Summary{}, err
	}
	list, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, Summary{}, errors.Wrap(err, "list reviews")
	}

	sum := Summary{Count: len(list)}
	if len(list) > 0 {
		total := 0
		for _, r := range list {
			total += r.Rating
		}
		sum.Average = float64(total) / float64(len(list))
	}
	return list, sum, nil
}
