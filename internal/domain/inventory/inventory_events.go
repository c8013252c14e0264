package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// Event type constants for the inventory context
const (
	EventTypeStockRestocked  = "inventory.stock.restocked"
	EventTypeStockReconciled = "inventory.stock.reconciled"
	EventTypeMovementRetired = "inventory.movement.retired"
)

// StockRestockedEvent fires when a salesable stock crosses from sold out back
// to available on the e-commerce surface.
type StockRestockedEvent struct {
	shared.BaseDomainEvent
	StockID      uuid.UUID       `json:"stock_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	StorePointID uuid.UUID       `json:"store_point_id"`
	EcomStock    decimal.Decimal `json:"ecom_stock"`
}

// NewStockRestockedEvent creates a restock event
func NewStockRestockedEvent(tenantID, stockID, productID, storePointID uuid.UUID, ecomStock decimal.Decimal) *StockRestockedEvent {
	return &StockRestockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRestocked, "Stock", stockID, tenantID),
		StockID:         stockID,
		ProductID:       productID,
		StorePointID:    storePointID,
		EcomStock:       ecomStock,
	}
}

// StockReconciledEvent fires when reconciliation corrected on-hand drift
type StockReconciledEvent struct {
	shared.BaseDomainEvent
	StockID   uuid.UUID       `json:"stock_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Drift     decimal.Decimal `json:"drift"`
	OnHand    decimal.Decimal `json:"on_hand"`
}

// NewStockReconciledEvent creates a reconciliation event
func NewStockReconciledEvent(tenantID, stockID, productID uuid.UUID, drift, onHand decimal.Decimal) *StockReconciledEvent {
	return &StockReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReconciled, "Stock", stockID, tenantID),
		StockID:         stockID,
		ProductID:       productID,
		Drift:           drift,
		OnHand:          onHand,
	}
}

// MovementRetiredEvent fires when a ledger entry is retired so downstream
// read models can drop it.
type MovementRetiredEvent struct {
	shared.BaseDomainEvent
	MovementID uuid.UUID       `json:"movement_id"`
	StockID    uuid.UUID       `json:"stock_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Direction  string          `json:"direction"`
}

// NewMovementRetiredEvent creates a retirement event
func NewMovementRetiredEvent(tenantID uuid.UUID, m *StockMovement) *MovementRetiredEvent {
	return &MovementRetiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMovementRetired, "StockMovement", m.ID, tenantID),
		MovementID:      m.ID,
		StockID:         m.StockID,
		Quantity:        m.EffectiveQuantity(),
		Direction:       m.Direction.String(),
	}
}
