package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ergolife/storefront/internal/domain/discount"
)

type discountJSON struct {
	DiscountID     string           `json:"discountId"`
	Code           string           `json:"code"`
	Description    string           `json:"description,omitempty"`
	Type           discount.Type    `json:"type"`
	Value          decimal.Decimal  `json:"value"`
	MaxDiscount    *decimal.Decimal `json:"maxDiscount,omitempty"`
	MinOrderAmount *decimal.Decimal `json:"minOrderAmount,omitempty"`
	UsageLimit     int              `json:"usageLimit"`
	UsedCount      int              `json:"usedCount"`
	StartDate      time.Time        `json:"startDate"`
	EndDate        time.Time        `json:"endDate"`
	IsGlobal       bool             `json:"isGlobal"`
	IsValid        *bool            `json:"isValid,omitempty"`
	InvalidReason  string           `json:"invalidReason,omitempty"`
}

func toDiscountJSON(d *discount.UserDiscount) discountJSON {
	return discountJSON{
		DiscountID:     d.ID,
		Code:           d.Code,
		Description:    d.Description,
		Type:           d.Type,
		Value:          d.Value,
		MaxDiscount:    d.MaxDiscount,
		MinOrderAmount: d.MinOrderAmount,
		UsageLimit:     d.UsageLimit,
		UsedCount:      d.UsedCount,
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		IsGlobal:       d.IsGlobal,
	}
}

// ListDiscounts returns the caller's own and global discounts, each
// annotated with current redeemability.
func (h *Handler) ListDiscounts(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	list, err := h.discounts.ListForUser(c.Request.Context(), id.UserID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	items := make([]discountJSON, len(list))
	for i := range list {
		item := toDiscountJSON(&list[i].UserDiscount)
		valid := list[i].IsValid
		item.IsValid = &valid
		item.InvalidReason = list[i].InvalidReason
		items[i] = item
	}
	respondItems(c, http.StatusOK, items)
}

type createDiscountRequest struct {
	UserID         *string          `json:"userId"`
	Code           string           `json:"code" binding:"required"`
	Description    string           `json:"description"`
	Type           string           `json:"type" binding:"required"`
	Value          decimal.Decimal  `json:"value"`
	MaxDiscount    *decimal.Decimal `json:"maxDiscount"`
	MinOrderAmount *decimal.Decimal `json:"minOrderAmount"`
	UsageLimit     int              `json:"usageLimit"`
	StartDate      time.Time        `json:"startDate"`
	EndDate        time.Time        `json:"endDate"`
	IsGlobal       bool             `json:"isGlobal"`
}

// CreateDiscount creates a discount. Admin only.
func (h *Handler) CreateDiscount(c *gin.Context) {
	var req createDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.discounts.Create(c.Request.Context(), discount.CreateInput{
		UserID:         req.UserID,
		Code:           req.Code,
		Description:    req.Description,
		Type:           discount.Type(req.Type),
		Value:          req.Value,
		MaxDiscount:    req.MaxDiscount,
		MinOrderAmount: req.MinOrderAmount,
		UsageLimit:     req.UsageLimit,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		IsGlobal:       req.IsGlobal,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusCreated, toDiscountJSON(d))
}
