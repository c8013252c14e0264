package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/catalog"
	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// RestockNotifier delivers restock reminders. Delivery failures are logged
// and swallowed; a reminder never fails the stock mutation that raised it.
type RestockNotifier interface {
	NotifyRestock(ctx context.Context, organizationID, productID uuid.UUID) error
}

// RestockReminderHandler fans a restock event out to every organization that
// registered interest in the product.
type RestockReminderHandler struct {
	organizations catalog.OrganizationLookup
	notifier      RestockNotifier
	logger        *zap.Logger
}

// NewRestockReminderHandler creates a new RestockReminderHandler
func NewRestockReminderHandler(
	organizations catalog.OrganizationLookup,
	notifier RestockNotifier,
	logger *zap.Logger,
) *RestockReminderHandler {
	return &RestockReminderHandler{
		organizations: organizations,
		notifier:      notifier,
		logger:        logger,
	}
}

// EventTypes returns the handled event types
func (h *RestockReminderHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockRestocked}
}

// Handle fans the reminder out. Individual delivery failures do not stop the
// fan-out and never surface to the publisher.
func (h *RestockReminderHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	restocked, ok := event.(*inventory.StockRestockedEvent)
	if !ok {
		return nil
	}

	interested, err := h.organizations.RestockInterest(ctx, restocked.TenantID(), restocked.ProductID)
	if err != nil {
		h.logger.Error("failed to load restock interest",
			zap.String("product_id", restocked.ProductID.String()),
			zap.Error(err))
		return err
	}

	for _, orgID := range interested {
		if err := h.notifier.NotifyRestock(ctx, orgID, restocked.ProductID); err != nil {
			h.logger.Warn("restock reminder delivery failed",
				zap.String("organization_id", orgID.String()),
				zap.String("product_id", restocked.ProductID.String()),
				zap.Error(err))
		}
	}

	h.logger.Info("restock reminders dispatched",
		zap.String("product_id", restocked.ProductID.String()),
		zap.Int("recipients", len(interested)))
	return nil
}
