package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// Event type constants for the order context
const (
	EventTypeOrderPlaced          = "order.placed"
	EventTypeOrderCompleted       = "order.completed"
	EventTypeOrderTrackingChanged = "order.tracking.changed"
)

// OrderPlacedEvent fires when a distributor order enters tracking
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID       `json:"order_id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	ReceiverID uuid.UUID       `json:"receiver_id"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	IsQueueing bool            `json:"is_queueing"`
}

// NewOrderPlacedEvent creates an order-placed event
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, "Order", o.ID, o.TenantID),
		OrderID:         o.ID,
		SupplierID:      o.SupplierID,
		ReceiverID:      o.ReceiverID,
		GrandTotal:      o.GrandTotal,
		IsQueueing:      o.IsQueueingOrder,
	}
}

// OrderCompletedEvent fires when a requisition finishes the clone chain into
// a purchase.
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	RequisitionID   uuid.UUID `json:"requisition_id"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	PurchaseID      uuid.UUID `json:"purchase_id"`
	AsOfDate        time.Time `json:"as_of_date"`
}

// NewOrderCompletedEvent creates a completion event
func NewOrderCompletedEvent(tenantID, requisitionID, purchaseOrderID, purchaseID uuid.UUID, asOfDate time.Time) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, "Order", purchaseID, tenantID),
		RequisitionID:   requisitionID,
		PurchaseOrderID: purchaseOrderID,
		PurchaseID:      purchaseID,
		AsOfDate:        asOfDate,
	}
}

// OrderTrackingChangedEvent fires on every tracking projection change. The
// handler fans out stock sync, notifications and, on terminal statuses,
// profit recomputation.
type OrderTrackingChangedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID `json:"order_id"`
	SupplierID     uuid.UUID `json:"supplier_id"`
	ReceiverID     uuid.UUID `json:"receiver_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
}

// NewOrderTrackingChangedEvent creates a tracking-changed event
func NewOrderTrackingChangedEvent(o *Order, previous, next TrackingStatus) *OrderTrackingChangedEvent {
	return &OrderTrackingChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderTrackingChanged, "Order", o.ID, o.TenantID),
		OrderID:         o.ID,
		SupplierID:      o.SupplierID,
		ReceiverID:      o.ReceiverID,
		PreviousStatus:  previous.String(),
		NewStatus:       next.String(),
	}
}
