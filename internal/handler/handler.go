// Package handler exposes the HTTP API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ergolife/storefront/internal/auth"
	"github.com/ergolife/storefront/internal/domain/cart"
	"github.com/ergolife/storefront/internal/domain/catalog"
	"github.com/ergolife/storefront/internal/domain/discount"
	"github.com/ergolife/storefront/internal/domain/order"
	"github.com/ergolife/storefront/internal/domain/review"
	"github.com/ergolife/storefront/internal/domain/user"
)

// Handler holds the domain services behind the HTTP API.
type Handler struct {
	carts     *cart.Service
	orders    *order.Service
	discounts *discount.Service
	addresses *user.AddressManager
	reviews   *review.Service
}

// NewHandler creates a Handler over the given services.
func NewHandler(
	carts *cart.Service,
	orders *order.Service,
	discounts *discount.Service,
	addresses *user.AddressManager,
	reviews *review.Service,
) *Handler {
	return &Handler{
		carts:     carts,
		orders:    orders,
		discounts: discounts,
		addresses: addresses,
		reviews:   reviews,
	}
}

// Routes registers all API routes under the given group. Every route
// requires bearer auth; admin routes additionally check the role.
func (h *Handler) Routes(api *gin.RouterGroup, verifier *auth.Verifier) {
	api.Use(verifier.Middleware())

	api.GET("/cart", h.GetCart)
	api.POST("/cart/items", h.AddCartItem)
	api.PATCH("/cart/items/:productId/:variantId", h.UpdateCartItem)
	api.POST("/cart/items/delete-multiple", h.RemoveCartItems)

	api.POST("/orders", h.CreateOrder)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/latest", h.LatestOrder)
	api.GET("/orders/:orderId", h.GetOrder)
	api.PATCH("/orders/:orderId/shipping", auth.RequireRole(auth.RoleAdmin), h.UpdateOrderShipping)

	api.GET("/discounts", h.ListDiscounts)
	api.POST("/discounts", auth.RequireRole(auth.RoleAdmin), h.CreateDiscount)

	api.GET("/users/me/addresses", h.ListAddresses)
	api.GET("/users/me/addresses/:addressId", h.GetAddress)
	api.POST("/users/me/addresses", h.CreateAddress)
	api.PATCH("/users/me/addresses/:addressId", h.UpdateAddress)
	api.DELETE("/users/me/addresses/:addressId", h.DeleteAddress)
	api.POST("/users/me/addresses/:addressId/select", h.SelectDefaultAddress)

	api.GET("/products/:productId/reviews", h.ListReviews)
	api.POST("/products/:productId/reviews", h.CreateReview)
}

func respondItem(c *gin.Context, status int, item any) {
	c.JSON(status, gin.H{"success": true, "item": item})
}

func respondItems(c *gin.Context, status int, items any) {
	c.JSON(status, gin.H{"success": true, "items": items})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": true, "message": message})
}

// respondDomainError maps domain sentinels and typed discount rejections to
// wire errors. Unmatched errors become opaque 500s with a log line.
func respondDomainError(c *gin.Context, err error) {
	if de := discount.AsError(err); de != nil {
		body := gin.H{"error": true, "code": de.Reason, "message": de.Message}
		if de.MinOrderAmount != nil {
			body["minOrderAmount"] = *de.MinOrderAmount
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	switch {
	case errors.Is(err, order.ErrCartEmpty),
		errors.Is(err, order.ErrContactRequired),
		errors.Is(err, order.ErrInvalidDeliveryStatus),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, user.ErrInvalidPostcode),
		errors.Is(err, discount.ErrCodeRequired),
		errors.Is(err, discount.ErrInvalidType),
		errors.Is(err, discount.ErrInvalidValue),
		errors.Is(err, discount.ErrInvalidWindow):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrVariantNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, user.ErrAddressNotFound),
		errors.Is(err, review.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, discount.ErrDuplicateCode),
		errors.Is(err, review.ErrAlreadyReviewed):
		respondError(c, http.StatusConflict, err.Error())
	default:
		zctx.From(c.Request.Context()).Error("Unhandled error", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// identity returns the authenticated caller or writes a 401.
func identity(c *gin.Context) (*auth.Identity, bool) {
	id := auth.FromContext(c)
	if id == nil {
		respondError(c, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}
	return id, true
}
