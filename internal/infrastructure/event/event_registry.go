package event

import (
	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/pricing"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// RegisterDomainEvents registers every domain event type with the
// serializer so outbox payloads can be rehydrated. New event types
// must be added here or the processor will dead-letter them.
func RegisterDomainEvents(s *EventSerializer) {
	register(s, inventory.EventTypeStockRestocked, &inventory.StockRestockedEvent{})
	register(s, inventory.EventTypeStockReconciled, &inventory.StockReconciledEvent{})
	register(s, inventory.EventTypeMovementRetired, &inventory.MovementRetiredEvent{})

	register(s, order.EventTypeOrderPlaced, &order.OrderPlacedEvent{})
	register(s, order.EventTypeOrderCompleted, &order.OrderCompletedEvent{})
	register(s, order.EventTypeOrderTrackingChanged, &order.OrderTrackingChangedEvent{})

	register(s, pricing.EventTypeCreditPaymentRecorded, &pricing.CreditPaymentRecordedEvent{})
	register(s, pricing.EventTypeCreditSettled, &pricing.CreditSettledEvent{})
}

func register(s *EventSerializer, eventType string, instance shared.DomainEvent) {
	s.Register(eventType, instance)
}
