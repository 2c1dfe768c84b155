package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ergolife/storefront/internal/domain/order"
)

type orderJSON struct {
	OrderID         string          `json:"orderId"`
	OrderNumber     string          `json:"orderNumber"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone"`
	OrderStatus     order.Status    `json:"orderStatus"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	DiscountCode    string          `json:"discountCode,omitempty"`
	InstallationFee decimal.Decimal `json:"installationFee"`
	Total           decimal.Decimal `json:"total"`
	Items           []order.Line    `json:"items"`
	Shipping        order.Shipping  `json:"shipping"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func toOrderJSON(o *order.Order) orderJSON {
	return orderJSON{
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Name:            o.Name,
		Phone:           o.Phone,
		OrderStatus:     o.Status,
		Subtotal:        o.Subtotal,
		DiscountAmount:  o.DiscountAmount,
		DiscountCode:    o.DiscountCode,
		InstallationFee: o.InstallationFee,
		Total:           o.Total(),
		Items:           o.Items,
		Shipping:        o.Shipping,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type shippingRequest struct {
	Address        *string `json:"address"`
	TrackingNumber *string `json:"trackingNumber"`
	DeliveryStatus *string `json:"deliveryStatus"`
}

func (r *shippingRequest) toUpdate() order.ShippingUpdate {
	upd := order.ShippingUpdate{
		Address:        r.Address,
		TrackingNumber: r.TrackingNumber,
	}
	if r.DeliveryStatus != nil {
		ds := order.DeliveryStatus(*r.DeliveryStatus)
		upd.DeliveryStatus = &ds
	}
	return upd
}

type createOrderRequest struct {
	Name            string           `json:"name"`
	Phone           string           `json:"phone"`
	InstallationFee decimal.Decimal  `json:"installationFee"`
	DiscountCode    string           `json:"discountCode"`
	Shipping        *shippingRequest `json:"shipping"`
}

// CreateOrder converts the caller's cart into an order.
func (h *Handler) CreateOrder(c *gin.Context) {
	ok := false
	defer func() { recordOrderOperation("create", ok) }()

	id, authed := identity(c)
	if !authed {
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	createReq := order.CreateRequest{
		Name:            req.Name,
		Phone:           req.Phone,
		InstallationFee: req.InstallationFee,
		DiscountCode:    req.DiscountCode,
	}
	if req.Shipping != nil {
		upd := req.Shipping.toUpdate()
		createReq.Shipping = &upd
	}

	o, err := h.orders.Create(c.Request.Context(), id.UserID, createReq)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	ok = true
	respondItem(c, http.StatusCreated, toOrderJSON(o))
}

// ListOrders returns the caller's orders, newest first.
func (h *Handler) ListOrders(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	list, err := h.orders.ListByUser(c.Request.Context(), id.UserID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	items := make([]orderJSON, len(list))
	for i := range list {
		items[i] = toOrderJSON(&list[i])
	}
	respondItems(c, http.StatusOK, items)
}

// LatestOrder returns the caller's most recent order, optionally filtered by
// the status query parameter.
func (h *Handler) LatestOrder(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	o, err := h.orders.Latest(c.Request.Context(), id.UserID, order.Status(c.Query("status")))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusOK, toOrderJSON(o))
}

// GetOrder returns one of the caller's orders by id.
func (h *Handler) GetOrder(c *gin.Context) {
	id, authed := identity(c)
	if !authed {
		return
	}

	o, err := h.orders.GetByID(c.Request.Context(), id.UserID, c.Param("orderId"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondItem(c, http.StatusOK, toOrderJSON(o))
}

// UpdateOrderShipping patches an order's shipping sub-record and keeps the
// order status in lockstep with the delivery status.
func (h *Handler) UpdateOrderShipping(c *gin.Context) {
	ok := false
	defer func() { recordOrderOperation("update_shipping", ok) }()

	id, authed := identity(c)
	if !authed {
		return
	}

	var req shippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.UpdateShipping(c.Request.Context(), id.UserID, c.Param("orderId"), req.toUpdate())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	ok = true
	respondItem(c, http.StatusOK, toOrderJSON(o))
}
