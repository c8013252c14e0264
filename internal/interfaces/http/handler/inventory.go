package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	invapp "github.com/pharmalink/backend/internal/application/inventory"
	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/interfaces/http/dto"
)

// InventoryHandler exposes the movement ledger and stock operations
type InventoryHandler struct {
	BaseHandler
	ledger     *invapp.LedgerService
	reconciler *invapp.ReconciliationService
	queries    *invapp.StockQueryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(
	ledger *invapp.LedgerService,
	reconciler *invapp.ReconciliationService,
	queries *invapp.StockQueryService,
	logger *zap.Logger,
) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: NewBaseHandler(logger),
		ledger:      ledger,
		reconciler:  reconciler,
		queries:     queries,
	}
}

type appendMovementRequest struct {
	StorePointID     uuid.UUID                   `json:"store_point_id" binding:"required"`
	ProductID        uuid.UUID                   `json:"product_id" binding:"required"`
	Direction        inventory.MovementDirection `json:"direction" binding:"required,oneof=IN OUT"`
	Quantity         decimal.Decimal             `json:"quantity" binding:"required,gt=0"`
	Rate             decimal.Decimal             `json:"rate"`
	Batch            string                      `json:"batch"`
	SecondaryUnit    bool                        `json:"secondary_unit"`
	ConversionFactor decimal.Decimal             `json:"conversion_factor"`
	DiscountTotal    decimal.Decimal             `json:"discount_total"`
	VatTotal         decimal.Decimal             `json:"vat_total"`
	TaxTotal         decimal.Decimal             `json:"tax_total"`
	Status           inventory.MovementStatus    `json:"status" binding:"required,oneof=DRAFT ACTIVE"`
	OrderID          *uuid.UUID                  `json:"order_id"`
	QueueingOrder    bool                        `json:"queueing_order"`
}

// AppendMovement handles POST /movements
func (h *InventoryHandler) AppendMovement(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req appendMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.ledger.Append(c.Request.Context(), invapp.AppendMovementCommand{
		TenantID:         tenantID,
		StorePointID:     req.StorePointID,
		ProductID:        req.ProductID,
		Direction:        req.Direction,
		Quantity:         req.Quantity,
		Rate:             req.Rate,
		Batch:            req.Batch,
		SecondaryUnit:    req.SecondaryUnit,
		ConversionFactor: req.ConversionFactor,
		DiscountTotal:    req.DiscountTotal,
		VatTotal:         req.VatTotal,
		TaxTotal:         req.TaxTotal,
		Status:           req.Status,
		OrderID:          req.OrderID,
		QueueingOrder:    req.QueueingOrder,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// RetireMovement handles POST /movements/:id/retire
func (h *InventoryHandler) RetireMovement(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	movementID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.ledger.Retire(c.Request.Context(), movementID, tenantID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

type replaceStockReferenceRequest struct {
	FromStockID uuid.UUID `json:"from_stock_id" binding:"required"`
	ToStockID   uuid.UUID `json:"to_stock_id" binding:"required"`
}

// ReplaceStockReference handles POST /movements/replace-stock. It
// repoints ledger entries after a stock merge.
func (h *InventoryHandler) ReplaceStockReference(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req replaceStockReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	moved, err := h.ledger.ReplaceStockReference(c.Request.Context(), req.FromStockID, req.ToStockID, tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, gin.H{"moved": moved})
}

// GetStock handles GET /stocks/:id
func (h *InventoryHandler) GetStock(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	stockID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.queries.GetStock(c.Request.Context(), stockID, tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, view)
}

// ListStocks handles GET /store-points/:id/stocks
func (h *InventoryHandler) ListStocks(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	storePointID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	views, total, err := h.queries.ListByStorePoint(c.Request.Context(), tenantID, storePointID, req.Page, req.PageSize, req.OrderBy, req.OrderDir)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.List(c, views, req.Page, req.Limit(), total)
}

// ReconcileStock handles POST /stocks/:id/reconcile
func (h *InventoryHandler) ReconcileStock(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	stockID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), stockID, tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// RebuildOrderable handles POST /stocks/:id/rebuild-orderable
func (h *InventoryHandler) RebuildOrderable(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	stockID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reconciler.RecomputeOrderable(c.Request.Context(), stockID, tenantID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
