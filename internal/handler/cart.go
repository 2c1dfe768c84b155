package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ergolife/storefront/internal/domain/cart"
)

type cartJSON struct {
	Items     []cart.Line `json:"items"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func toCartJSON(c *cart.Cart) cartJSON {
	items := c.Items
	if items == nil {
		items = []cart.Line{}
	}
	return cartJSON{Items: items, UpdatedAt: c.UpdatedAt}
}

// GetCart returns the caller's cart; an empty cart when none exists yet.
func (h *Handler) GetCart(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	crt, err := h.carts.Get(c.Request.Context(), id.UserID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusOK, toCartJSON(crt))
}

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// AddCartItem adds a line to the cart, merging quantity into an existing
// line for the same product/variant pair.
func (h *Handler) AddCartItem(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	crt, err := h.carts.AddItem(c.Request.Context(), id.UserID, cart.Line{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusOK, toCartJSON(crt))
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem sets the quantity of an existing cart line.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	key := cart.LineKey{
		ProductID: c.Param("productId"),
		VariantID: c.Param("variantId"),
	}
	crt, err := h.carts.UpdateItem(c.Request.Context(), id.UserID, key, req.Quantity)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusOK, toCartJSON(crt))
}

type removeCartItemsRequest struct {
	Items []cart.LineKey `json:"items" binding:"required"`
}

// RemoveCartItems removes the listed lines from the cart; keys that match
// nothing are ignored.
func (h *Handler) RemoveCartItems(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	var req removeCartItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	crt, err := h.carts.RemoveItems(c.Request.Context(), id.UserID, req.Items)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusOK, toCartJSON(crt))
}
