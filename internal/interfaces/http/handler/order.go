package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	orderapp "github.com/pharmalink/backend/internal/application/order"
	"github.com/pharmalink/backend/internal/domain/order"
)

// OrderHandler exposes order placement, completion and tracking
type OrderHandler struct {
	BaseHandler
	orders   *orderapp.OrderService
	tracking *orderapp.TrackingService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *orderapp.OrderService, tracking *orderapp.TrackingService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(logger),
		orders:      orders,
		tracking:    tracking,
	}
}

type placeOrderRequest struct {
	SupplierID            uuid.UUID            `json:"supplier_id" binding:"required"`
	ReceiverID            uuid.UUID            `json:"receiver_id" binding:"required"`
	StorePointID          uuid.UUID            `json:"store_point_id" binding:"required"`
	AreaID                uuid.UUID            `json:"area_id"`
	GroupID               *uuid.UUID           `json:"group_id"`
	Lines                 []orderapp.OrderLine `json:"lines" binding:"required,min=1,dive"`
	TentativeDeliveryDate *time.Time           `json:"tentative_delivery_date"`
}

// PlaceOrder handles POST /orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	view, err := h.orders.PlaceOrder(c.Request.Context(), orderapp.PlaceOrderCommand{
		TenantID:              tenantID,
		SupplierID:            req.SupplierID,
		ReceiverID:            req.ReceiverID,
		StorePointID:          req.StorePointID,
		AreaID:                req.AreaID,
		GroupID:               req.GroupID,
		Lines:                 req.Lines,
		TentativeDeliveryDate: req.TentativeDeliveryDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, view)
}

type completeOrderRequest struct {
	AsOfDate *time.Time `json:"as_of_date"`
}

// CompleteOrder handles POST /orders/:id/complete. The id is the
// requisition being turned into the purchase order chain.
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	requisitionID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req completeOrderRequest
	// body is optional, an empty one completes as of now
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	asOf := time.Now()
	if req.AsOfDate != nil {
		asOf = *req.AsOfDate
	}

	result, err := h.orders.Complete(c.Request.Context(), requisitionID, tenantID, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

type transitionRequest struct {
	Status        order.TrackingStatus `json:"status" binding:"required"`
	FailureReason string               `json:"failure_reason"`
}

// Transition handles POST /orders/:id/transition
func (h *OrderHandler) Transition(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	view, err := h.tracking.Transition(c.Request.Context(), orderapp.TransitionCommand{
		OrderID:       orderID,
		TenantID:      tenantID,
		Status:        req.Status,
		FailureReason: req.FailureReason,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, view)
}

type additionalDiscountRequest struct {
	Amount  *decimal.Decimal `json:"amount"`
	Percent *decimal.Decimal `json:"percent"`
}

// ApplyAdditionalDiscount handles POST /orders/:id/additional-discount
func (h *OrderHandler) ApplyAdditionalDiscount(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req additionalDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	view, err := h.orders.ApplyAdditionalDiscount(c.Request.Context(), orderapp.AdditionalDiscountCommand{
		OrderID:  orderID,
		TenantID: tenantID,
		Amount:   req.Amount,
		Percent:  req.Percent,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, view)
}

// CopyOrder handles POST /orders/:id/copy
func (h *OrderHandler) CopyOrder(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.orders.Copy(c.Request.Context(), orderID, tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, view)
}
