package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	catalogapp "github.com/pharmalink/backend/internal/application/catalog"
	"github.com/pharmalink/backend/internal/domain/catalog"
	"github.com/pharmalink/backend/internal/domain/shared"
	"github.com/pharmalink/backend/internal/interfaces/http/dto"
)

// CatalogHandler exposes the product listing and the ordering-policy
// mutations on products and organizations
type CatalogHandler struct {
	BaseHandler
	catalog *catalogapp.CatalogService
	lookup  *catalogapp.LookupService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service *catalogapp.CatalogService, lookup *catalogapp.LookupService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(logger),
		catalog:     service,
		lookup:      lookup,
	}
}

type listProductsRequest struct {
	dto.ListRequest
	Search    string `form:"search"`
	OrderMode string `form:"order_mode" binding:"omitempty,oneof=OPEN STOCK STOCK_AND_NEXT_DAY STOCK_AND_OPEN"`
	Salesable *bool  `form:"salesable"`
}

// ListProducts handles GET /products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	var req listProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.Search = req.Search
	if req.OrderMode != "" {
		filter.Filters["order_mode"] = req.OrderMode
	}
	if req.Salesable != nil {
		filter.Filters["salesable"] = *req.Salesable
	}

	page, err := h.lookup.ListProducts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, page)
}

type orderModeRequest struct {
	OrderMode catalog.OrderMode `json:"order_mode" binding:"required"`
}

// SetOrderMode handles PUT /products/:id/order-mode
func (h *CatalogHandler) SetOrderMode(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	productID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req orderModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.catalog.SetProductOrderMode(c.Request.Context(), tenantID, productID, req.OrderMode); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

type salesableRequest struct {
	Salesable *bool `json:"salesable" binding:"required"`
}

// SetSalesable handles PUT /products/:id/salesable
func (h *CatalogHandler) SetSalesable(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	productID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req salesableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.catalog.SetProductSalesable(c.Request.Context(), tenantID, productID, *req.Salesable); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

type organizationSettingsRequest struct {
	AllowOrderFrom        catalog.AllowOrderFrom `json:"allow_order_from" binding:"required"`
	DefaultCreditPercent  decimal.Decimal        `json:"default_credit_percent"`
	DefaultCreditTermDays int                    `json:"default_credit_term_days"`
	DynamicDiscountFactor decimal.Decimal        `json:"dynamic_discount_factor"`
}

// UpdateOrganizationSettings handles PUT /organizations/:id/settings
func (h *CatalogHandler) UpdateOrganizationSettings(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	organizationID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req organizationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	err := h.catalog.UpdateOrganizationSettings(c.Request.Context(), tenantID, organizationID, catalog.OrganizationSettings{
		AllowOrderFrom:        req.AllowOrderFrom,
		DefaultCreditPercent:  req.DefaultCreditPercent,
		DefaultCreditTermDays: req.DefaultCreditTermDays,
		DynamicDiscountFactor: req.DynamicDiscountFactor,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

type restockInterestRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" binding:"required"`
}

// RegisterRestockInterest handles POST /products/:id/restock-interest
func (h *CatalogHandler) RegisterRestockInterest(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	productID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req restockInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.catalog.RegisterRestockInterest(c.Request.Context(), tenantID, productID, req.OrganizationID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
