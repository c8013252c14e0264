package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	invapp "github.com/pharmalink/backend/internal/application/inventory"
	orderapp "github.com/pharmalink/backend/internal/application/order"
)

// LoggingAlertNotifier reports operational anomalies to the structured log.
// In production deployments this is swapped for a pager or chat integration.
type LoggingAlertNotifier struct {
	logger *zap.Logger
}

var _ invapp.AlertNotifier = (*LoggingAlertNotifier)(nil)

// NewLoggingAlertNotifier creates a log-backed alert notifier
func NewLoggingAlertNotifier(logger *zap.Logger) *LoggingAlertNotifier {
	return &LoggingAlertNotifier{logger: logger}
}

// Alert logs the anomaly at warn level
func (n *LoggingAlertNotifier) Alert(_ context.Context, subject, message string) {
	n.logger.Warn("Operational alert",
		zap.String("subject", subject),
		zap.String("message", message))
}

// LoggingRestockNotifier records restock reminders in the log
type LoggingRestockNotifier struct {
	logger *zap.Logger
}

var _ invapp.RestockNotifier = (*LoggingRestockNotifier)(nil)

// NewLoggingRestockNotifier creates a log-backed restock notifier
func NewLoggingRestockNotifier(logger *zap.Logger) *LoggingRestockNotifier {
	return &LoggingRestockNotifier{logger: logger}
}

// NotifyRestock logs the reminder
func (n *LoggingRestockNotifier) NotifyRestock(_ context.Context, organizationID, productID uuid.UUID) error {
	n.logger.Info("Restock reminder",
		zap.String("organization_id", organizationID.String()),
		zap.String("product_id", productID.String()))
	return nil
}

// LoggingTransitionNotifier records order-status notifications in the log
type LoggingTransitionNotifier struct {
	logger *zap.Logger
}

var _ orderapp.TransitionNotifier = (*LoggingTransitionNotifier)(nil)

// NewLoggingTransitionNotifier creates a log-backed transition notifier
func NewLoggingTransitionNotifier(logger *zap.Logger) *LoggingTransitionNotifier {
	return &LoggingTransitionNotifier{logger: logger}
}

// NotifyOrderStatus logs the status change
func (n *LoggingTransitionNotifier) NotifyOrderStatus(_ context.Context, tenantID, orderID, receiverID uuid.UUID, previous, current string) error {
	n.logger.Info("Order status notification",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("receiver_id", receiverID.String()),
		zap.String("previous_status", previous),
		zap.String("current_status", current))
	return nil
}
