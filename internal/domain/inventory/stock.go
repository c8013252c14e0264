package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/catalog"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// Stock is the per-store-point, per-product stock aggregate. It carries three
// quantities with distinct meanings:
//
//	OnHand:    physically present, derived from the ACTIVE movement ledger
//	Orderable: available to promise against distributor orders
//	EcomStock: published availability for the e-commerce surface
//
// OnHand must always equal the signed sum of ACTIVE movements for this stock;
// ReconcileOnHand corrects drift and reports it.
type Stock struct {
	shared.TenantAggregateRoot
	StorePointID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_store_product,priority:1"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_store_product,priority:2"`
	OnHand             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Orderable          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	EcomStock          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LatestPurchaseRate decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LatestSaleRate     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AvgPurchaseRate    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsSalesable        bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Stock) TableName() string {
	return "stocks"
}

// NewStock creates an empty stock record for a store point and product
func NewStock(tenantID, storePointID, productID uuid.UUID) (*Stock, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant ID cannot be empty")
	}
	if storePointID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Store point ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product ID cannot be empty")
	}
	return &Stock{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StorePointID:        storePointID,
		ProductID:           productID,
		IsSalesable:         true,
	}, nil
}

// ApplyMovement folds a newly activated ledger entry into the stock
// quantities. The published e-commerce quantity follows the ledger, so a real
// restock raises the restock reminder through AdjustEcomStock. An OUT
// movement may not drive on-hand negative.
func (s *Stock) ApplyMovement(m *StockMovement) error {
	if m.StockID != s.ID {
		return shared.NewDomainError("INTEGRITY_VIOLATION", "Movement belongs to a different stock")
	}
	qty := m.EffectiveQuantity()
	switch m.Direction {
	case MovementIn:
		s.OnHand = s.OnHand.Add(qty)
		s.Orderable = s.Orderable.Add(qty)
		s.AdjustEcomStock(qty)
		if m.Rate.GreaterThan(decimal.Zero) {
			s.updatePurchaseRates(qty, m.Rate.Div(s.conversionOrOne(m)))
		}
	case MovementOut:
		if qty.GreaterThan(s.OnHand) {
			return shared.NewDomainError("INTEGRITY_VIOLATION", "Movement would drive on-hand stock negative")
		}
		s.OnHand = s.OnHand.Sub(qty)
		s.Orderable = s.Orderable.Sub(qty)
		s.AdjustEcomStock(qty.Neg())
		if m.Rate.GreaterThan(decimal.Zero) {
			s.LatestSaleRate = m.Rate.Div(s.conversionOrOne(m))
		}
	default:
		return shared.NewDomainError("VALIDATION_ERROR", "Invalid movement direction")
	}
	s.UpdatedAt = time.Now()
	return nil
}

// ReverseMovement undoes the effect of a retiring ACTIVE entry on every
// quantity ApplyMovement touched
func (s *Stock) ReverseMovement(m *StockMovement) error {
	if m.StockID != s.ID {
		return shared.NewDomainError("INTEGRITY_VIOLATION", "Movement belongs to a different stock")
	}
	qty := m.EffectiveQuantity()
	switch m.Direction {
	case MovementIn:
		if qty.GreaterThan(s.OnHand) {
			return shared.NewDomainError("INTEGRITY_VIOLATION", "Reversal would drive on-hand stock negative")
		}
		s.OnHand = s.OnHand.Sub(qty)
		s.Orderable = s.Orderable.Sub(qty)
		if s.Orderable.IsNegative() {
			s.Orderable = decimal.Zero
		}
		s.EcomStock = s.EcomStock.Sub(qty)
		if s.EcomStock.IsNegative() {
			s.EcomStock = decimal.Zero
		}
	case MovementOut:
		s.OnHand = s.OnHand.Add(qty)
		s.Orderable = s.Orderable.Add(qty)
		s.AdjustEcomStock(qty)
	default:
		return shared.NewDomainError("VALIDATION_ERROR", "Invalid movement direction")
	}
	s.UpdatedAt = time.Now()
	return nil
}

// ReserveOrderable decrements the available-to-promise quantity for a new
// distributor order line. Strict STOCK products refuse reservations beyond
// the orderable quantity; every other mode reserves unconditionally and may
// go negative on orderable (queued or open backlog).
func (s *Stock) ReserveOrderable(quantity decimal.Decimal, mode catalog.OrderMode) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Reservation quantity must be positive")
	}
	if mode == catalog.OrderModeStock && quantity.GreaterThan(s.Orderable) {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough orderable stock")
	}
	s.Orderable = s.Orderable.Sub(quantity)
	s.UpdatedAt = time.Now()
	return nil
}

// ReleaseOrderable returns a reservation to the available-to-promise pool,
// on order cancellation or a quantity decrease.
func (s *Stock) ReleaseOrderable(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Release quantity must be positive")
	}
	s.Orderable = s.Orderable.Add(quantity)
	s.UpdatedAt = time.Now()
	return nil
}

// AdjustOrderable moves available-to-promise by a signed delta without the
// reservation check, used by dispatch sync where the quantity was already
// promised.
func (s *Stock) AdjustOrderable(delta decimal.Decimal) {
	s.Orderable = s.Orderable.Add(delta)
	s.UpdatedAt = time.Now()
}

// AdjustEcomStock moves the published e-commerce availability by delta. When a
// salesable product crosses from sold out back to available, a restock
// reminder event is raised for interested organizations.
func (s *Stock) AdjustEcomStock(delta decimal.Decimal) {
	before := s.EcomStock
	s.EcomStock = s.EcomStock.Add(delta)
	s.UpdatedAt = time.Now()

	if s.IsSalesable && before.LessThanOrEqual(decimal.Zero) && s.EcomStock.GreaterThan(decimal.Zero) {
		s.AddDomainEvent(NewStockRestockedEvent(s.TenantID, s.ID, s.ProductID, s.StorePointID, s.EcomStock))
	}
}

// IsOutOfStock evaluates availability under the product's order mode:
// OPEN products are never out of stock; STOCK products are out when orderable
// is exhausted; queue-capable and open-fallback modes keep accepting orders.
func (s *Stock) IsOutOfStock(mode catalog.OrderMode) bool {
	switch mode {
	case catalog.OrderModeOpen, catalog.OrderModeStockAndOpen:
		return false
	case catalog.OrderModeStock:
		return s.Orderable.LessThanOrEqual(decimal.Zero)
	case catalog.OrderModeStockAndNextDay:
		// orders queue for the next day instead of being rejected
		return false
	}
	return s.Orderable.LessThanOrEqual(decimal.Zero)
}

// QueueingEligible reports whether a new order line should enter the IN_QUEUE
// tracking state instead of PENDING: stock is exhausted but the mode queues.
func (s *Stock) QueueingEligible(mode catalog.OrderMode) bool {
	return mode.AllowsQueueing() && s.Orderable.LessThanOrEqual(decimal.Zero)
}

// RebuildOrderable recomputes available-to-promise from scratch: the
// published e-commerce quantity minus everything promised to in-flight
// orders.
func (s *Stock) RebuildOrderable(inFlight decimal.Decimal) {
	s.Orderable = s.EcomStock.Sub(inFlight)
	s.UpdatedAt = time.Now()
}

// ReconcileOnHand sets on-hand to the ledger-derived quantity and returns the
// correction applied. A zero return means the invariant already held.
func (s *Stock) ReconcileOnHand(ledgerSum decimal.Decimal) decimal.Decimal {
	drift := ledgerSum.Sub(s.OnHand)
	if drift.IsZero() {
		return decimal.Zero
	}
	s.OnHand = ledgerSum
	s.Orderable = s.Orderable.Add(drift)
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewStockReconciledEvent(s.TenantID, s.ID, s.ProductID, drift, ledgerSum))
	return drift
}

// SetSalesable toggles visibility on the selling surfaces
func (s *Stock) SetSalesable(salesable bool) {
	s.IsSalesable = salesable
	s.UpdatedAt = time.Now()
}

func (s *Stock) conversionOrOne(m *StockMovement) decimal.Decimal {
	if m.SecondaryUnit && m.ConversionFactor.GreaterThan(decimal.Zero) {
		return m.ConversionFactor
	}
	return decimal.NewFromInt(1)
}

// updatePurchaseRates maintains the moving-average purchase rate alongside the
// latest rate. The average is weighted over the on-hand quantity present
// before the incoming movement.
func (s *Stock) updatePurchaseRates(incomingQty, ratePerPrimary decimal.Decimal) {
	s.LatestPurchaseRate = ratePerPrimary
	existingQty := s.OnHand.Sub(incomingQty)
	if existingQty.LessThanOrEqual(decimal.Zero) || s.AvgPurchaseRate.IsZero() {
		s.AvgPurchaseRate = ratePerPrimary
		return
	}
	totalValue := s.AvgPurchaseRate.Mul(existingQty).Add(ratePerPrimary.Mul(incomingQty))
	s.AvgPurchaseRate = totalValue.Div(s.OnHand)
}
