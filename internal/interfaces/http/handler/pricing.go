package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	pricingapp "github.com/pharmalink/backend/internal/application/pricing"
	"github.com/pharmalink/backend/internal/domain/pricing"
)

// PricingHandler exposes the discount preview and credit operations
type PricingHandler struct {
	BaseHandler
	discounts *pricingapp.DiscountService
	credits   *pricingapp.CreditService
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(discounts *pricingapp.DiscountService, credits *pricingapp.CreditService, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{
		BaseHandler: NewBaseHandler(logger),
		discounts:   discounts,
		credits:     credits,
	}
}

type discountPreviewRequest struct {
	ReceiverID uuid.UUID       `form:"receiver_id" binding:"required"`
	AreaID     uuid.UUID       `form:"area_id"`
	Total      decimal.Decimal `form:"total" binding:"required"`
}

// PreviewDiscount handles GET /discounts/preview
func (h *PricingHandler) PreviewDiscount(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req discountPreviewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	preview, err := h.discounts.Preview(c.Request.Context(), tenantID, req.ReceiverID, req.AreaID, req.Total)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, preview)
}

type applyCreditTermsRequest struct {
	CreditAmount decimal.Decimal `json:"credit_amount"`
	TermDays     int             `json:"term_days"`
	CostPercent  decimal.Decimal `json:"cost_percent"`
}

// ApplyCreditTerms handles POST /orders/:id/credit-terms
func (h *PricingHandler) ApplyCreditTerms(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req applyCreditTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	view, err := h.credits.ApplyTerms(c.Request.Context(), pricingapp.ApplyCreditTermsCommand{
		TenantID:     tenantID,
		OrderID:      orderID,
		CreditAmount: req.CreditAmount,
		TermDays:     req.TermDays,
		CostPercent:  req.CostPercent,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, view)
}

type recordPaymentRequest struct {
	Amount decimal.Decimal       `json:"amount" binding:"required,gt=0"`
	Method pricing.PaymentMethod `json:"method" binding:"required"`
}

// RecordPayment handles POST /credits/:id/payments
func (h *PricingHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	creditEntryID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	view, err := h.credits.RecordPayment(c.Request.Context(), pricingapp.RecordPaymentCommand{
		TenantID:      tenantID,
		CreditEntryID: creditEntryID,
		Amount:        req.Amount,
		Method:        req.Method,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, view)
}

// GetOrderCredit handles GET /orders/:id/credit
func (h *PricingHandler) GetOrderCredit(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.credits.GetByOrder(c.Request.Context(), orderID, tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, view)
}

// ListOverdueCredits handles GET /credits/overdue
func (h *PricingHandler) ListOverdueCredits(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	views, err := h.credits.ListOverdue(c.Request.Context(), tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, views)
}
