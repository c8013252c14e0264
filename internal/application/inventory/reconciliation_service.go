package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// TaskReconcileStock is the durable task name for a reconciliation run
const TaskReconcileStock = "inventory.reconcile_stock"

// ReconcilePayload is the durable-task payload for a single stock
// reconciliation
type ReconcilePayload struct {
	StockID  uuid.UUID `json:"stock_id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

// ReconciliationService realigns the derived on-hand quantity with the
// ledger. Drift is not fatal: it is corrected, logged and reported to the
// operational alert channel. Runs are idempotent; reconciling an already
// consistent stock is a no-op.
type ReconciliationService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	cache          CacheInvalidator
	alerts         AlertNotifier
	logger         *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	txScope TransactionScope,
	cache CacheInvalidator,
	alerts AlertNotifier,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		txScope: txScope,
		cache:   cache,
		alerts:  alerts,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReconciliationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Reconcile recomputes on-hand for one stock from the ACTIVE ledger sum and
// corrects the stored value when it drifted. Purchase-order and distributor
// order entries are excluded from the sum; they move stock only on
// completion.
func (s *ReconciliationService) Reconcile(ctx context.Context, stockID, tenantID uuid.UUID) (*ReconcileResult, error) {
	var result *ReconcileResult
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		stock, err := repos.StockRepo().FindByIDForUpdate(ctx, stockID, tenantID)
		if err != nil {
			return err
		}
		sum, err := repos.MovementRepo().SumActiveByStock(ctx, stockID, tenantID)
		if err != nil {
			return err
		}

		drift := stock.ReconcileOnHand(sum.Net())
		result = &ReconcileResult{
			StockID:   stock.ID,
			Drift:     drift,
			OnHand:    stock.OnHand,
			Corrected: !drift.IsZero(),
		}
		if drift.IsZero() {
			return nil
		}
		if err := repos.StockRepo().Save(ctx, stock); err != nil {
			return err
		}
		events = stock.GetDomainEvents()
		stock.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Corrected {
		s.logger.Warn("stock on-hand drift corrected",
			zap.String("stock_id", stockID.String()),
			zap.String("drift", result.Drift.String()),
			zap.String("on_hand", result.OnHand.String()))
		if s.alerts != nil {
			s.alerts.Alert(ctx, "stock reconciliation drift",
				fmt.Sprintf("stock %s corrected by %s to %s", stockID, result.Drift, result.OnHand))
		}
		if s.eventPublisher != nil {
			if err := s.eventPublisher.Publish(ctx, events...); err != nil {
				s.logger.Error("failed to publish reconciliation events", zap.Error(err))
			}
		}
		if s.cache != nil {
			s.cache.Invalidate(ctx, StockCacheKey(stockID))
		}
	}
	return result, nil
}

// RecomputeOrderable rebuilds orderable stock from scratch:
// ecom stock minus the deliverable quantity of movements attached to orders
// still in flight. Delayed (queueing) orders count only while PENDING or
// READY_TO_DELIVER; accepted queued orders already have dedicated stock.
func (s *ReconciliationService) RecomputeOrderable(ctx context.Context, stockID, tenantID uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		stock, err := repos.StockRepo().FindByIDForUpdate(ctx, stockID, tenantID)
		if err != nil {
			return err
		}

		inFlight, err := repos.MovementRepo().SumAttachedToOrders(ctx, stockID, tenantID,
			order.ReservingStatuses(), order.QueueingReservingStatuses())
		if err != nil {
			return err
		}

		stock.RebuildOrderable(inFlight)
		return repos.StockRepo().Save(ctx, stock)
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, StockCacheKey(stockID))
	}
	return nil
}
