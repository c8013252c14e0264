package telemetry

import (
	"context"

	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/pricing"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// BusinessMetricsHandler feeds domain events into the business metric
// instruments. It subscribes on the event bus next to the functional
// handlers; recording never fails the event.
type BusinessMetricsHandler struct {
	metrics *BusinessMetrics
	logger  *zap.Logger
}

// NewBusinessMetricsHandler creates a new BusinessMetricsHandler
func NewBusinessMetricsHandler(metrics *BusinessMetrics, logger *zap.Logger) *BusinessMetricsHandler {
	return &BusinessMetricsHandler{metrics: metrics, logger: logger}
}

// EventTypes returns the observed event types
func (h *BusinessMetricsHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderTrackingChanged,
		inventory.EventTypeStockReconciled,
		pricing.EventTypeCreditPaymentRecorded,
	}
}

// Handle records the metric matching the event
func (h *BusinessMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *order.OrderPlacedEvent:
		kind := "REGULAR"
		if evt.IsQueueing {
			kind = "QUEUEING"
		}
		h.metrics.RecordOrderPlaced(ctx, kind, evt.GrandTotal)
	case *order.OrderTrackingChangedEvent:
		h.metrics.RecordTrackingTransition(ctx, evt.NewStatus)
	case *inventory.StockReconciledEvent:
		if !evt.Drift.IsZero() {
			h.metrics.RecordStockDrift(ctx)
		}
	case *pricing.CreditPaymentRecordedEvent:
		h.metrics.RecordCreditPayment(ctx)
	default:
		h.logger.Debug("unobserved event type", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetricsHandler)(nil)
