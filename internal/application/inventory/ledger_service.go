package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/catalog"
	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// LedgerService handles movement ledger operations. Every mutation runs in a
// single transaction with the affected Stock row locked, so two orders
// reserving from the same stock serialize instead of losing an update.
type LedgerService struct {
	txScope        TransactionScope
	products       catalog.ProductLookup
	eventPublisher shared.EventPublisher
	cache          CacheInvalidator
	logger         *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	txScope TransactionScope,
	products catalog.ProductLookup,
	cache CacheInvalidator,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		txScope:  txScope,
		products: products,
		cache:    cache,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Append validates and appends a ledger entry. When the entry is an active
// stock movement its quantity is folded into on-hand immediately; when it
// belongs to a regular (non-queueing) distributor order, orderable stock is
// checked and decremented in the same locked transaction, failing with
// INSUFFICIENT_STOCK if the product's order mode requires stock backing.
func (s *LedgerService) Append(ctx context.Context, cmd AppendMovementCommand) (*MovementResult, error) {
	mode, err := s.products.OrderModeFor(ctx, cmd.TenantID, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	var result *MovementResult
	var stock *inventory.Stock

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		created, err := repos.StockRepo().GetOrCreate(ctx, cmd.TenantID, cmd.StorePointID, cmd.ProductID)
		if err != nil {
			return err
		}
		// re-read under the row lock so concurrent reservations serialize
		stock, err = repos.StockRepo().FindByIDForUpdate(ctx, created.ID, cmd.TenantID)
		if err != nil {
			return err
		}

		movement, err := inventory.NewStockMovement(
			cmd.TenantID, stock.ID, cmd.Direction, cmd.Quantity, cmd.Rate, cmd.Status)
		if err != nil {
			return err
		}
		movement.WithBatch(cmd.Batch)
		movement.WithTaxBreakdown(cmd.DiscountTotal, cmd.VatTotal, cmd.TaxTotal)
		if cmd.SecondaryUnit {
			movement.WithSecondaryUnit(cmd.ConversionFactor)
		}
		if cmd.OrderID != nil {
			movement.WithOrder(*cmd.OrderID)
		}

		if movement.IsActive() {
			if err := stock.ApplyMovement(movement); err != nil {
				return err
			}
		}
		if cmd.OrderID != nil && movement.Status == inventory.MovementStatusDistributorOrder && !cmd.QueueingOrder {
			if err := stock.ReserveOrderable(movement.EffectiveQuantity(), mode); err != nil {
				return err
			}
		}

		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
		if err := repos.StockRepo().Save(ctx, stock); err != nil {
			return err
		}

		result = &MovementResult{
			MovementID: movement.ID,
			StockID:    stock.ID,
			OnHand:     stock.OnHand,
			Orderable:  stock.Orderable,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, stock)
	s.invalidateStock(ctx, stock.ID)
	return result, nil
}

// Retire soft-deactivates a ledger entry and reverses its stock effect if it
// was previously active. Reservations held by in-flight order lines are
// released back to orderable.
func (s *LedgerService) Retire(ctx context.Context, movementID, tenantID uuid.UUID) error {
	var stockID uuid.UUID
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		movement, err := repos.MovementRepo().FindByID(ctx, movementID, tenantID)
		if err != nil {
			return err
		}
		stock, err := repos.StockRepo().FindByIDForUpdate(ctx, movement.StockID, tenantID)
		if err != nil {
			return err
		}
		stockID = stock.ID

		wasActive := movement.IsActive()
		wasReserving := movement.Status == inventory.MovementStatusDistributorOrder && movement.OrderID != nil
		if err := movement.Retire(); err != nil {
			return err
		}
		if wasActive {
			if err := stock.ReverseMovement(movement); err != nil {
				return err
			}
		}
		if wasReserving {
			if err := stock.ReleaseOrderable(movement.EffectiveQuantity()); err != nil {
				return err
			}
		}

		if err := repos.MovementRepo().Update(ctx, movement); err != nil {
			return err
		}
		if err := repos.StockRepo().Save(ctx, stock); err != nil {
			return err
		}
		events = append(stock.GetDomainEvents(), inventory.NewMovementRetiredEvent(tenantID, movement))
		stock.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events...)
	s.invalidateStock(ctx, stockID)
	return nil
}

// ReplaceStockReference re-points every ledger entry from one stock to
// another, used when duplicate stock rows are merged after a product merge.
// Both rows are corrected by a follow-up reconciliation.
func (s *LedgerService) ReplaceStockReference(ctx context.Context, fromStockID, toStockID, tenantID uuid.UUID) (int64, error) {
	if fromStockID == toStockID {
		return 0, shared.NewDomainError("VALIDATION_ERROR", "Source and target stock are the same")
	}
	var moved int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// lock both rows in a stable order to avoid deadlocks between
		// concurrent merges
		first, second := fromStockID, toStockID
		if second.String() < first.String() {
			first, second = second, first
		}
		if _, err := repos.StockRepo().FindByIDForUpdate(ctx, first, tenantID); err != nil {
			return err
		}
		if _, err := repos.StockRepo().FindByIDForUpdate(ctx, second, tenantID); err != nil {
			return err
		}

		var err error
		moved, err = repos.MovementRepo().ReplaceStockReference(ctx, fromStockID, toStockID, tenantID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("stock reference replaced",
		zap.String("from_stock_id", fromStockID.String()),
		zap.String("to_stock_id", toStockID.String()),
		zap.Int64("movements", moved))
	s.invalidateStock(ctx, fromStockID)
	s.invalidateStock(ctx, toStockID)
	return moved, nil
}

func (s *LedgerService) publishEvents(ctx context.Context, stock *inventory.Stock) {
	if stock == nil {
		return
	}
	s.publish(ctx, stock.GetDomainEvents()...)
	stock.ClearDomainEvents()
}

func (s *LedgerService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}

func (s *LedgerService) invalidateStock(ctx context.Context, stockID uuid.UUID) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, StockCacheKey(stockID))
}

// StockCacheKey is the cache key for one stock's read model
func StockCacheKey(stockID uuid.UUID) string {
	return fmt.Sprintf("stock:%s", stockID)
}
