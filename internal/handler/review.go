package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ergolife/storefront/internal/domain/review"
)

// ListReviews returns a product's reviews with an aggregate summary.
func (h *Handler) ListReviews(c *gin.Context) {
	list, summary, err := h.reviews.ListByProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if list == nil {
		list = []review.Review{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   list,
		"summary": summary,
	})
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview records the caller's review of a product. A user can review
// a product at most once.
func (h *Handler) CreateReview(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	r, err := h.reviews.Create(c.Request.Context(), review.CreateInput{
		ProductID: c.Param("productId"),
		UserID:    id.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusCreated, r)
}
