package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	invapp "github.com/pharmalink/backend/internal/application/inventory"
	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// Durable task names owned by the order context
const (
	TaskSyncOrderStock   = "order.sync_stock"
	TaskRecomputeProfit  = "order.recompute_profit"
	stockSyncRetryDelay  = 5 * time.Second
	profitComputeDelay   = time.Second
	cacheInvalidateDelay = 2 * time.Second
)

// TransitionNotifier pushes order-status notifications to the parties.
// Delivery failures never fail the transition.
type TransitionNotifier interface {
	NotifyOrderStatus(ctx context.Context, tenantID, orderID, receiverID uuid.UUID, previous, current string) error
}

// TrackingService appends tracking events and runs their side effects. The
// appended event is the source of truth: it commits together with the
// projection update, and stock synchronization happens after the commit:
// immediately when possible, through the durable queue when not.
type TrackingService struct {
	txScope        invapp.TransactionScope
	queue          invapp.TaskEnqueuer
	cache          invapp.CacheInvalidator
	notifier       TransitionNotifier
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTrackingService creates a new TrackingService
func NewTrackingService(
	txScope invapp.TransactionScope,
	queue invapp.TaskEnqueuer,
	cache invapp.CacheInvalidator,
	notifier TransitionNotifier,
	logger *zap.Logger,
) *TrackingService {
	return &TrackingService{
		txScope:  txScope,
		queue:    queue,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TrackingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Transition appends a tracking event and updates the order's current-status
// projection in one transaction. Stock side effects run after the commit; if
// they cannot be applied immediately they are retried through the durable
// queue and the committed transition stands either way.
func (s *TrackingService) Transition(ctx context.Context, cmd TransitionCommand) (*OrderView, error) {
	if !cmd.Status.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid tracking status")
	}

	var o *order.Order
	var previous order.TrackingStatus

	err := s.txScope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		var err error
		o, err = repos.OrderRepo().FindByIDForTenant(ctx, cmd.OrderID, cmd.TenantID)
		if err != nil {
			return err
		}
		previous = o.TrackingStatus
		if previous.IsTerminal() {
			return shared.NewDomainError("TERMINAL_STATUS", "Order has reached a terminal status")
		}
		if !previous.CanTransitionTo(cmd.Status) {
			return shared.NewDomainError("INVALID_STATE", "Illegal tracking transition")
		}

		event, err := order.NewTrackingEvent(cmd.TenantID, cmd.OrderID, cmd.Status, cmd.FailureReason)
		if err != nil {
			return err
		}
		if err := repos.TrackingRepo().Append(ctx, event); err != nil {
			return err
		}
		if err := o.ApplyTrackingStatus(cmd.Status); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderEvents(ctx, o)
	s.runSideEffects(ctx, o, previous, cmd.Status)

	view := ToOrderView(o)
	return &view, nil
}

func (s *TrackingService) runSideEffects(ctx context.Context, o *order.Order, previous, current order.TrackingStatus) {
	payload := StockSyncPayload{
		OrderID:  o.ID,
		TenantID: o.TenantID,
		Status:   current.String(),
		Previous: previous.String(),
	}
	if err := s.SyncStock(ctx, payload); err != nil {
		s.logger.Warn("immediate stock sync failed, deferring to queue",
			zap.String("order_id", o.ID.String()),
			zap.String("status", current.String()),
			zap.Error(err))
		if qErr := s.queue.Enqueue(ctx, TaskSyncOrderStock, payload, stockSyncRetryDelay); qErr != nil {
			s.logger.Error("failed to enqueue stock sync",
				zap.String("order_id", o.ID.String()),
				zap.Error(qErr))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyOrderStatus(ctx, o.TenantID, o.ID, o.ReceiverID,
			previous.String(), current.String()); err != nil {
			s.logger.Warn("order status notification failed",
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
		}
	}

	if current.IsTerminal() {
		if err := s.queue.Enqueue(ctx, TaskRecomputeProfit, ProfitRecomputePayload{
			OrderID:  o.ID,
			TenantID: o.TenantID,
		}, profitComputeDelay); err != nil {
			s.logger.Error("failed to enqueue profit recompute",
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
		}
		if s.cache != nil {
			s.cache.Invalidate(ctx, OrderCacheKey(o.ID))
		}
	}
}

// SyncStock applies the stock effect of one committed transition. It is the
// durable-queue consumer as well, so it must stay idempotent with respect to
// the tracking history it reads.
func (s *TrackingService) SyncStock(ctx context.Context, payload StockSyncPayload) error {
	current := order.TrackingStatus(payload.Status)
	previous := order.TrackingStatus(payload.Previous)

	return s.txScope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		lines, err := repos.MovementRepo().FindByOrder(ctx, payload.OrderID, payload.TenantID)
		if err != nil {
			return err
		}

		switch {
		case current == order.TrackingOnTheWay:
			return s.applyDispatch(ctx, repos, lines, decimal.NewFromInt(-1))

		case previous == order.TrackingOnTheWay && current.ReversesOnTheWay():
			return s.applyDispatch(ctx, repos, lines, decimal.NewFromInt(1))

		case current == order.TrackingPending || current == order.TrackingRejected || current == order.TrackingCancelled:
			return s.rebuildOrderable(ctx, repos, lines, payload.TenantID)
		}
		return nil
	})
}

// applyDispatch moves ecom and orderable stock by the deliverable quantity of
// every line, sign -1 on dispatch and +1 on pull-back. The per-line status
// flip records which lines have already been applied, so a redelivered queue
// task skips them instead of double-counting.
func (s *TrackingService) applyDispatch(
	ctx context.Context,
	repos invapp.TransactionalRepositories,
	lines []*inventory.StockMovement,
	sign decimal.Decimal,
) error {
	for _, line := range lines {
		var flip func() error
		if sign.IsNegative() {
			if line.Status != inventory.MovementStatusDistributorOrder {
				continue
			}
			flip = line.Dispatch
		} else {
			if line.Status != inventory.MovementStatusOrderOnTheWay {
				continue
			}
			flip = line.RecallDispatch
		}

		stock, err := repos.StockRepo().FindByIDForUpdate(ctx, line.StockID, line.TenantID)
		if err != nil {
			return err
		}
		delta := line.DeliverableQuantity().Mul(sign)
		stock.AdjustEcomStock(delta)
		stock.AdjustOrderable(delta)
		if err := flip(); err != nil {
			return err
		}
		if err := repos.MovementRepo().Update(ctx, line); err != nil {
			return err
		}
		if err := repos.StockRepo().Save(ctx, stock); err != nil {
			return err
		}
		s.publishStockEvents(ctx, stock)
	}
	return nil
}

func (s *TrackingService) rebuildOrderable(
	ctx context.Context,
	repos invapp.TransactionalRepositories,
	lines []*inventory.StockMovement,
	tenantID uuid.UUID,
) error {
	seen := make(map[uuid.UUID]bool)
	for _, line := range lines {
		if seen[line.StockID] {
			continue
		}
		seen[line.StockID] = true

		stock, err := repos.StockRepo().FindByIDForUpdate(ctx, line.StockID, tenantID)
		if err != nil {
			return err
		}
		inFlight, err := repos.MovementRepo().SumAttachedToOrders(ctx, line.StockID, tenantID,
			order.ReservingStatuses(), order.QueueingReservingStatuses())
		if err != nil {
			return err
		}
		stock.RebuildOrderable(inFlight)
		if err := repos.StockRepo().Save(ctx, stock); err != nil {
			return err
		}
		if s.cache != nil {
			s.cache.Invalidate(ctx, invapp.StockCacheKey(stock.ID))
		}
	}
	return nil
}

func (s *TrackingService) publishOrderEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, o.GetDomainEvents()...); err != nil {
		s.logger.Error("failed to publish tracking events", zap.Error(err))
	}
	o.ClearDomainEvents()
}

func (s *TrackingService) publishStockEvents(ctx context.Context, stock *inventory.Stock) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, stock.GetDomainEvents()...); err != nil {
		s.logger.Error("failed to publish stock events", zap.Error(err))
	}
	stock.ClearDomainEvents()
}

// OrderCacheKey is the cache key for one order's read model
func OrderCacheKey(orderID uuid.UUID) string {
	return "order:" + orderID.String()
}
