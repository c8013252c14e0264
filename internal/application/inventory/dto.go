package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/inventory"
)

// AppendMovementCommand is the input for appending a ledger entry
type AppendMovementCommand struct {
	TenantID         uuid.UUID                   `json:"tenant_id" binding:"required"`
	StorePointID     uuid.UUID                   `json:"store_point_id" binding:"required"`
	ProductID        uuid.UUID                   `json:"product_id" binding:"required"`
	Direction        inventory.MovementDirection `json:"direction" binding:"required"`
	Quantity         decimal.Decimal             `json:"quantity" binding:"required"`
	Rate             decimal.Decimal             `json:"rate"`
	Batch            string                      `json:"batch"`
	SecondaryUnit    bool                        `json:"secondary_unit"`
	ConversionFactor decimal.Decimal             `json:"conversion_factor"`
	DiscountTotal    decimal.Decimal             `json:"discount_total"`
	VatTotal         decimal.Decimal             `json:"vat_total"`
	TaxTotal         decimal.Decimal             `json:"tax_total"`
	Status           inventory.MovementStatus    `json:"status" binding:"required"`
	// OrderID attaches the entry to a distributor order line; those entries
	// reserve orderable stock at append time
	OrderID *uuid.UUID `json:"order_id"`
	// QueueingOrder skips the orderable reservation for next-day orders
	QueueingOrder bool `json:"queueing_order"`
}

// MovementResult reports the ledger append outcome
type MovementResult struct {
	MovementID uuid.UUID       `json:"movement_id"`
	StockID    uuid.UUID       `json:"stock_id"`
	OnHand     decimal.Decimal `json:"on_hand"`
	Orderable  decimal.Decimal `json:"orderable"`
}

// ReconcileResult reports a reconciliation run for one stock
type ReconcileResult struct {
	StockID   uuid.UUID       `json:"stock_id"`
	Drift     decimal.Decimal `json:"drift"`
	OnHand    decimal.Decimal `json:"on_hand"`
	Corrected bool            `json:"corrected"`
}

// StockView is the read model returned by stock queries
type StockView struct {
	StockID            uuid.UUID       `json:"stock_id"`
	StorePointID       uuid.UUID       `json:"store_point_id"`
	ProductID          uuid.UUID       `json:"product_id"`
	OnHand             decimal.Decimal `json:"on_hand"`
	Orderable          decimal.Decimal `json:"orderable"`
	EcomStock          decimal.Decimal `json:"ecom_stock"`
	LatestPurchaseRate decimal.Decimal `json:"latest_purchase_rate"`
	AvgPurchaseRate    decimal.Decimal `json:"avg_purchase_rate"`
	OutOfStock         bool            `json:"out_of_stock"`
	QueueingEligible   bool            `json:"queueing_eligible"`
}
