package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	invapp "github.com/pharmalink/backend/internal/application/inventory"
	"github.com/pharmalink/backend/internal/domain/catalog"
	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// DiscountCalculator resolves the monetary discount for a cart total,
// honoring dynamic factors over the tier table.
type DiscountCalculator interface {
	DiscountForCart(ctx context.Context, tenantID, receiverID, areaID uuid.UUID, total decimal.Decimal) (decimal.Decimal, error)
}

// OrderService handles order placement, completion, copying and discounts
type OrderService struct {
	txScope        invapp.TransactionScope
	groupRepo      order.GroupRepository
	products       catalog.ProductLookup
	discounts      DiscountCalculator
	eventPublisher shared.EventPublisher
	cache          invapp.CacheInvalidator
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	txScope invapp.TransactionScope,
	groupRepo order.GroupRepository,
	products catalog.ProductLookup,
	discounts DiscountCalculator,
	cache invapp.CacheInvalidator,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		txScope:   txScope,
		groupRepo: groupRepo,
		products:  products,
		discounts: discounts,
		cache:     cache,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// PlaceOrder places a distributor order. Each line reserves orderable stock
// under the stock row lock; if any line's product has run out under a
// queueing order mode the whole order enters tracking at IN_QUEUE instead of
// PENDING. The cart-level discount (tiered or dynamic) is applied to the
// order totals before the grand total is footed.
func (s *OrderService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*OrderView, error) {
	if len(cmd.Lines) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order has no lines")
	}

	o, err := order.NewOrder(cmd.TenantID, order.KindVendorOrder, cmd.SupplierID, cmd.ReceiverID, cmd.StorePointID)
	if err != nil {
		return nil, err
	}
	if cmd.TentativeDeliveryDate != nil {
		o.SetTentativeDeliveryDate(*cmd.TentativeDeliveryDate)
	}
	o.GroupID = cmd.GroupID

	// a single out-of-stock line under a queueing mode turns the whole
	// order into a next-day queueing order
	queueing, err := s.detectQueueing(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if queueing {
		o.MarkQueueing()
	}

	err = s.txScope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		amount := decimal.Zero
		lineDiscount := decimal.Zero
		vat := decimal.Zero
		tax := decimal.Zero

		for _, line := range cmd.Lines {
			mode, err := s.products.OrderModeFor(ctx, cmd.TenantID, line.ProductID)
			if err != nil {
				return err
			}
			created, err := repos.StockRepo().GetOrCreate(ctx, cmd.TenantID, cmd.StorePointID, line.ProductID)
			if err != nil {
				return err
			}
			stock, err := repos.StockRepo().FindByIDForUpdate(ctx, created.ID, cmd.TenantID)
			if err != nil {
				return err
			}

			movement, err := inventory.NewStockMovement(
				cmd.TenantID, stock.ID, inventory.MovementOut,
				line.Quantity, line.Rate, inventory.MovementStatusDistributorOrder)
			if err != nil {
				return err
			}
			movement.WithBatch(line.Batch)
			movement.WithOrder(o.ID)
			movement.WithTaxBreakdown(line.DiscountTotal, line.VatTotal, line.TaxTotal)
			if line.SecondaryUnit {
				movement.WithSecondaryUnit(line.ConversionFactor)
			}

			if !queueing {
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

			amount = amount.Add(movement.LineAmount())
			lineDiscount = lineDiscount.Add(line.DiscountTotal)
			vat = vat.Add(line.VatTotal)
			tax = tax.Add(line.TaxTotal)
		}

		cartDiscount, err := s.discounts.DiscountForCart(
			ctx, cmd.TenantID, cmd.ReceiverID, cmd.AreaID, amount.Sub(lineDiscount))
		if err != nil {
			return err
		}
		if err := o.SetLineTotals(amount, lineDiscount.Add(cartDiscount), vat, tax); err != nil {
			return err
		}

		entry := order.TrackingPending
		if queueing {
			entry = order.TrackingInQueue
		}
		event, err := order.NewTrackingEvent(cmd.TenantID, o.ID, entry, "")
		if err != nil {
			return err
		}
		if err := repos.TrackingRepo().Append(ctx, event); err != nil {
			return err
		}
		return repos.OrderRepo().Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.recomputeGroup(ctx, o)
	s.publish(ctx, order.NewOrderPlacedEvent(o))
	view := ToOrderView(o)
	return &view, nil
}

// Complete runs the completion clone chain: the requisition is cloned into a
// purchase order and then into the final purchase, line items are copied
// across as active ledger entries, and stock is received under the row lock.
// A requisition whose purchase order already exists fails with
// ALREADY_COMPLETED; re-running a half-finished completion is safe.
func (s *OrderService) Complete(ctx context.Context, requisitionID, tenantID uuid.UUID, asOfDate time.Time) (*CompleteResult, error) {
	var result *CompleteResult

	err := s.txScope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		requisition, err := repos.OrderRepo().FindByIDForTenant(ctx, requisitionID, tenantID)
		if err != nil {
			return err
		}
		if requisition.Kind != order.KindRequisition {
			return shared.NewDomainError("VALIDATION_ERROR", "Only requisitions can be completed")
		}
		if !requisition.IsActive() {
			return shared.NewDomainError("INVALID_STATE", "Requisition is deactivated")
		}
		if existing, err := repos.OrderRepo().FindBySource(ctx, requisitionID, tenantID, order.KindPurchaseOrder); err == nil && existing != nil {
			return shared.NewDomainError("ALREADY_COMPLETED", "Requisition already has a purchase order")
		}

		purchaseOrder, err := requisition.CloneAs(order.KindPurchaseOrder)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, purchaseOrder); err != nil {
			return err
		}
		purchase, err := purchaseOrder.CloneAs(order.KindPurchase)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, purchase); err != nil {
			return err
		}

		lines, err := repos.MovementRepo().FindByOrder(ctx, requisitionID, tenantID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if line.Status != inventory.MovementStatusOrderPending {
				continue
			}
			received, err := inventory.NewStockMovement(
				tenantID, line.StockID, inventory.MovementIn,
				line.Quantity, line.Rate, inventory.MovementStatusActive)
			if err != nil {
				return err
			}
			received.WithBatch(line.Batch)
			received.WithOrder(purchase.ID)
			received.WithTaxBreakdown(line.DiscountTotal, line.VatTotal, line.TaxTotal)
			received.WithMovementDate(asOfDate)
			if line.SecondaryUnit {
				received.WithSecondaryUnit(line.ConversionFactor)
			}

			stock, err := repos.StockRepo().FindByIDForUpdate(ctx, line.StockID, tenantID)
			if err != nil {
				return err
			}
			if err := stock.ApplyMovement(received); err != nil {
				return err
			}
			if err := repos.MovementRepo().Create(ctx, received); err != nil {
				return err
			}
			if err := repos.StockRepo().Save(ctx, stock); err != nil {
				return err
			}
		}
		// the requisition lines served their purpose
		if _, err := repos.MovementRepo().UpdateStatus(ctx, requisitionID, tenantID,
			inventory.MovementStatusOrderPending, inventory.MovementStatusInactive); err != nil {
			return err
		}

		result = &CompleteResult{
			RequisitionID:   requisitionID,
			PurchaseOrderID: purchaseOrder.ID,
			PurchaseID:      purchase.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, order.NewOrderCompletedEvent(
		tenantID, result.RequisitionID, result.PurchaseOrderID, result.PurchaseID, asOfDate))
	s.logger.Info("requisition completed",
		zap.String("requisition_id", requisitionID.String()),
		zap.String("purchase_id", result.PurchaseID.String()))
	return result, nil
}

// ApplyAdditionalDiscount applies a flat or percent additional discount to
// the order and refreshes the group totals when the order is part of a
// multi-supplier basket.
func (s *OrderService) ApplyAdditionalDiscount(ctx context.Context, cmd AdditionalDiscountCommand) (*OrderView, error) {
	if (cmd.Amount == nil) == (cmd.Percent == nil) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Provide exactly one of amount or percent")
	}

	var o *order.Order
	err := s.txScope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		var err error
		o, err = repos.OrderRepo().FindByIDForTenant(ctx, cmd.OrderID, cmd.TenantID)
		if err != nil {
			return err
		}
		if cmd.Amount != nil {
			err = o.ApplyAdditionalDiscountAmount(*cmd.Amount)
		} else {
			err = o.ApplyAdditionalDiscountPercent(*cmd.Percent)
		}
		if err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.recomputeGroup(ctx, o)
	view := ToOrderView(o)
	return &view, nil
}

// Copy supersedes an order with an editable duplicate: movements are cloned
// to the copy and the original's lines and header are soft-deactivated. The
// reservation moves with the lines, so orderable stock is unchanged.
func (s *OrderService) Copy(ctx context.Context, orderID, tenantID uuid.UUID) (*OrderView, error) {
	var cp *order.Order
	err := s.txScope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		original, err := repos.OrderRepo().FindByIDForTenant(ctx, orderID, tenantID)
		if err != nil {
			return err
		}
		cp, err = original.Copy()
		if err != nil {
			return err
		}

		lines, err := repos.MovementRepo().FindByOrder(ctx, orderID, tenantID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if line.Status == inventory.MovementStatusInactive {
				continue
			}
			cloned, err := inventory.NewStockMovement(
				tenantID, line.StockID, line.Direction, line.Quantity, line.Rate, line.Status)
			if err != nil {
				return err
			}
			cloned.WithBatch(line.Batch)
			cloned.WithOrder(cp.ID)
			cloned.WithTaxBreakdown(line.DiscountTotal, line.VatTotal, line.TaxTotal)
			if line.SecondaryUnit {
				cloned.WithSecondaryUnit(line.ConversionFactor)
			}
			if err := repos.MovementRepo().Create(ctx, cloned); err != nil {
				return err
			}
			if err := line.Retire(); err != nil {
				return err
			}
			if err := repos.MovementRepo().Update(ctx, line); err != nil {
				return err
			}
		}

		if err := repos.OrderRepo().Save(ctx, original); err != nil {
			return err
		}
		return repos.OrderRepo().Save(ctx, cp)
	})
	if err != nil {
		return nil, err
	}

	s.recomputeGroup(ctx, cp)
	view := ToOrderView(cp)
	return &view, nil
}

func (s *OrderService) detectQueueing(ctx context.Context, cmd PlaceOrderCommand) (bool, error) {
	for _, line := range cmd.Lines {
		mode, err := s.products.OrderModeFor(ctx, cmd.TenantID, line.ProductID)
		if err != nil {
			return false, err
		}
		if !mode.AllowsQueueing() {
			continue
		}
		stock, err := s.txStock(ctx, cmd.TenantID, cmd.StorePointID, line.ProductID)
		if err != nil {
			return false, err
		}
		if stock.QueueingEligible(mode) {
			return true, nil
		}
	}
	return false, nil
}

func (s *OrderService) txStock(ctx context.Context, tenantID, storePointID, productID uuid.UUID) (*inventory.Stock, error) {
	var stock *inventory.Stock
	err := s.txScope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		var err error
		stock, err = repos.StockRepo().GetOrCreate(ctx, tenantID, storePointID, productID)
		return err
	})
	return stock, err
}

func (s *OrderService) recomputeGroup(ctx context.Context, o *order.Order) {
	if o == nil || o.GroupID == nil {
		return
	}
	err := s.txScope.Execute(ctx, func(repos invapp.TransactionalRepositories) error {
		group, err := s.groupRepo.FindByIDForTenant(ctx, *o.GroupID, o.TenantID)
		if err != nil {
			return err
		}
		members, err := repos.OrderRepo().ListByGroup(ctx, *o.GroupID, o.TenantID)
		if err != nil {
			return err
		}
		group.RecomputeFromOrders(members)
		return s.groupRepo.Save(ctx, group)
	})
	if err != nil {
		s.logger.Error("group total recomputation failed",
			zap.String("group_id", o.GroupID.String()),
			zap.Error(err))
	}
}

func (s *OrderService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish order events", zap.Error(err))
	}
}
