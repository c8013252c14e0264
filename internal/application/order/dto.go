package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/order"
)

// OrderLine is one product line of a placed order
type OrderLine struct {
	ProductID        uuid.UUID       `json:"product_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	Rate             decimal.Decimal `json:"rate" binding:"required"`
	Batch            string          `json:"batch"`
	SecondaryUnit    bool            `json:"secondary_unit"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	DiscountTotal    decimal.Decimal `json:"discount_total"`
	VatTotal         decimal.Decimal `json:"vat_total"`
	TaxTotal         decimal.Decimal `json:"tax_total"`
}

// PlaceOrderCommand is the input for placing a distributor order
type PlaceOrderCommand struct {
	TenantID              uuid.UUID   `json:"tenant_id" binding:"required"`
	SupplierID            uuid.UUID   `json:"supplier_id" binding:"required"`
	ReceiverID            uuid.UUID   `json:"receiver_id" binding:"required"`
	StorePointID          uuid.UUID   `json:"store_point_id" binding:"required"`
	AreaID                uuid.UUID   `json:"area_id"`
	GroupID               *uuid.UUID  `json:"group_id"`
	Lines                 []OrderLine `json:"lines" binding:"required,min=1,dive"`
	TentativeDeliveryDate *time.Time  `json:"tentative_delivery_date"`
}

// OrderView is the order read model
type OrderView struct {
	OrderID            uuid.UUID       `json:"order_id"`
	Kind               string          `json:"kind"`
	TrackingStatus     string          `json:"tracking_status"`
	Amount             decimal.Decimal `json:"amount"`
	Discount           decimal.Decimal `json:"discount"`
	RoundDiscount      decimal.Decimal `json:"round_discount"`
	VatTotal           decimal.Decimal `json:"vat_total"`
	TaxTotal           decimal.Decimal `json:"tax_total"`
	AdditionalDiscount decimal.Decimal `json:"additional_discount"`
	AdditionalCost     decimal.Decimal `json:"additional_cost"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
	IsQueueingOrder    bool            `json:"is_queueing_order"`
	GroupID            *uuid.UUID      `json:"group_id,omitempty"`
}

// ToOrderView maps the aggregate to its read model
func ToOrderView(o *order.Order) OrderView {
	return OrderView{
		OrderID:            o.ID,
		Kind:               o.Kind.String(),
		TrackingStatus:     o.TrackingStatus.String(),
		Amount:             o.Amount,
		Discount:           o.Discount,
		RoundDiscount:      o.RoundDiscount,
		VatTotal:           o.VatTotal,
		TaxTotal:           o.TaxTotal,
		AdditionalDiscount: o.AdditionalDiscount,
		AdditionalCost:     o.AdditionalCost,
		GrandTotal:         o.GrandTotal,
		IsQueueingOrder:    o.IsQueueingOrder,
		GroupID:            o.GroupID,
	}
}

// CompleteResult reports the completion clone chain
type CompleteResult struct {
	RequisitionID   uuid.UUID `json:"requisition_id"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	PurchaseID      uuid.UUID `json:"purchase_id"`
}

// TransitionCommand is the input for a tracking transition
type TransitionCommand struct {
	OrderID       uuid.UUID            `json:"order_id" binding:"required"`
	TenantID      uuid.UUID            `json:"tenant_id" binding:"required"`
	Status        order.TrackingStatus `json:"status" binding:"required"`
	FailureReason string               `json:"failure_reason"`
}

// AdditionalDiscountCommand applies a flat amount or a percent, not both
type AdditionalDiscountCommand struct {
	OrderID  uuid.UUID        `json:"order_id" binding:"required"`
	TenantID uuid.UUID        `json:"tenant_id" binding:"required"`
	Amount   *decimal.Decimal `json:"amount"`
	Percent  *decimal.Decimal `json:"percent"`
}

// StockSyncPayload is the durable-task payload for a deferred stock sync
type StockSyncPayload struct {
	OrderID  uuid.UUID `json:"order_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Status   string    `json:"status"`
	Previous string    `json:"previous"`
}

// ProfitRecomputePayload is the durable-task payload for profit recomputation
type ProfitRecomputePayload struct {
	OrderID  uuid.UUID `json:"order_id"`
	TenantID uuid.UUID `json:"tenant_id"`
}
