package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// MovementDirection is the direction of a stock movement
type MovementDirection string

const (
	// MovementIn represents stock coming in (purchase, adjustment up, transfer in)
	MovementIn MovementDirection = "IN"
	// MovementOut represents stock going out (sale, order fulfilment, transfer out)
	MovementOut MovementDirection = "OUT"
)

// IsValid returns true for a known direction
func (d MovementDirection) IsValid() bool {
	return d == MovementIn || d == MovementOut
}

// String returns the string representation
func (d MovementDirection) String() string {
	return string(d)
}

// MovementStatus is the lifecycle status of a ledger entry. A movement is
// immutable once ACTIVE; the only permitted mutation is retirement to INACTIVE.
type MovementStatus string

const (
	// MovementStatusDraft is a cart/requisition line not yet counted in stock
	MovementStatusDraft MovementStatus = "DRAFT"
	// MovementStatusActive is a committed ledger entry counted in on-hand stock
	MovementStatusActive MovementStatus = "ACTIVE"
	// MovementStatusInactive is a retired (soft-deleted) entry
	MovementStatusInactive MovementStatus = "INACTIVE"
	// MovementStatusOrderPending belongs to a purchase order awaiting completion;
	// excluded from the on-hand reconciliation sum
	MovementStatusOrderPending MovementStatus = "ORDER_PENDING"
	// MovementStatusDistributorOrder belongs to a distributor e-commerce order;
	// tracked for orderable stock, excluded from on-hand reconciliation
	MovementStatusDistributorOrder MovementStatus = "DISTRIBUTOR_ORDER"
	// MovementStatusOrderOnTheWay marks a distributor order line whose
	// dispatch decrement has been applied; the flip is what keeps the
	// dispatch stock sync idempotent under queue redelivery
	MovementStatusOrderOnTheWay MovementStatus = "ORDER_ON_THE_WAY"
)

// IsValid returns true for a known movement status
func (s MovementStatus) IsValid() bool {
	switch s {
	case MovementStatusDraft, MovementStatusActive, MovementStatusInactive,
		MovementStatusOrderPending, MovementStatusDistributorOrder,
		MovementStatusOrderOnTheWay:
		return true
	}
	return false
}

// String returns the string representation
func (s MovementStatus) String() string {
	return string(s)
}

// CountsTowardOnHand reports whether entries in this status participate in the
// on-hand reconciliation invariant. Order-pending and distributor-order entries
// move stock only once their owning order completes.
func (s MovementStatus) CountsTowardOnHand() bool {
	return s == MovementStatusActive
}

// StockMovement is a single entry in the append-only movement ledger.
// Each entry is owned by exactly one Stock and at most one Order line.
type StockMovement struct {
	shared.BaseEntity
	TenantID         uuid.UUID         `gorm:"type:uuid;not null;index:idx_movement_tenant_time,priority:1"`
	StockID          uuid.UUID         `gorm:"type:uuid;not null;index:idx_movement_stock_status,priority:1"`
	Direction        MovementDirection `gorm:"type:varchar(10);not null;index:idx_movement_stock_status,priority:3"`
	Quantity         decimal.Decimal   `gorm:"type:decimal(18,4);not null"` // in the entered unit, always positive
	Rate             decimal.Decimal   `gorm:"type:decimal(18,4);not null"` // per entered unit
	Batch            string            `gorm:"type:varchar(100)"`           // normalized to upper case
	ConversionFactor decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:1"`
	SecondaryUnit    bool              `gorm:"not null;default:false"`
	DiscountTotal    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	VatTotal         decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	TaxTotal         decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	ShortQuantity    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"` // registered short on delivery
	ReturnQuantity   decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"` // registered return on delivery
	OrderID          *uuid.UUID        `gorm:"type:uuid;index"`                        // owning order line, nullable
	Status           MovementStatus    `gorm:"type:varchar(30);not null;index:idx_movement_stock_status,priority:2"`
	MovementDate     time.Time         `gorm:"type:timestamptz;not null;index:idx_movement_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new ledger entry. The batch label is case-folded
// to upper so "abc-1" and "ABC-1" land in the same batch.
func NewStockMovement(
	tenantID, stockID uuid.UUID,
	direction MovementDirection,
	quantity, rate decimal.Decimal,
	status MovementStatus,
) (*StockMovement, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant ID cannot be empty")
	}
	if stockID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Stock ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid movement direction")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if rate.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Rate cannot be negative")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid movement status")
	}

	return &StockMovement{
		BaseEntity:       shared.NewBaseEntity(),
		TenantID:         tenantID,
		StockID:          stockID,
		Direction:        direction,
		Quantity:         quantity,
		Rate:             rate,
		ConversionFactor: decimal.NewFromInt(1),
		Status:           status,
		MovementDate:     time.Now(),
	}, nil
}

// WithBatch sets the normalized batch label
func (m *StockMovement) WithBatch(batch string) *StockMovement {
	m.Batch = strings.ToUpper(strings.TrimSpace(batch))
	return m
}

// WithSecondaryUnit marks the entry as recorded in the secondary unit with the
// given conversion factor to the primary unit.
func (m *StockMovement) WithSecondaryUnit(conversionFactor decimal.Decimal) *StockMovement {
	m.SecondaryUnit = true
	m.ConversionFactor = conversionFactor
	return m
}

// WithOrder attaches the entry to its owning order line
func (m *StockMovement) WithOrder(orderID uuid.UUID) *StockMovement {
	m.OrderID = &orderID
	return m
}

// WithTaxBreakdown sets the discount/vat/tax breakdown carried on the line
func (m *StockMovement) WithTaxBreakdown(discount, vat, tax decimal.Decimal) *StockMovement {
	m.DiscountTotal = discount
	m.VatTotal = vat
	m.TaxTotal = tax
	return m
}

// WithMovementDate overrides the movement date
func (m *StockMovement) WithMovementDate(date time.Time) *StockMovement {
	m.MovementDate = date
	return m
}

// EffectiveQuantity returns the quantity in primary units. When the entry was
// recorded in the secondary unit it is multiplied by the conversion factor.
func (m *StockMovement) EffectiveQuantity() decimal.Decimal {
	if m.SecondaryUnit {
		return m.Quantity.Mul(m.ConversionFactor)
	}
	return m.Quantity
}

// DeliverableQuantity is the effective quantity minus any short and return
// quantities already registered against the line.
func (m *StockMovement) DeliverableQuantity() decimal.Decimal {
	q := m.EffectiveQuantity().Sub(m.ShortQuantity).Sub(m.ReturnQuantity)
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}

// SignedQuantity returns the effective quantity with sign by direction
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Direction == MovementOut {
		return m.EffectiveQuantity().Neg()
	}
	return m.EffectiveQuantity()
}

// LineAmount is quantity x rate before the tax breakdown
func (m *StockMovement) LineAmount() decimal.Decimal {
	return m.Quantity.Mul(m.Rate)
}

// RegisterShortReturn records short/return quantities reported at delivery.
// Only lines still attached to an in-flight order accept registration.
func (m *StockMovement) RegisterShortReturn(short, ret decimal.Decimal) error {
	if short.IsNegative() || ret.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Short/return quantity cannot be negative")
	}
	if short.Add(ret).GreaterThan(m.EffectiveQuantity()) {
		return shared.NewDomainError("INTEGRITY_VIOLATION", "Short/return cannot exceed the line quantity")
	}
	m.ShortQuantity = short
	m.ReturnQuantity = ret
	m.UpdatedAt = time.Now()
	return nil
}

// Activate commits a draft or order-pending entry into the on-hand ledger
func (m *StockMovement) Activate() error {
	switch m.Status {
	case MovementStatusDraft, MovementStatusOrderPending:
		m.Status = MovementStatusActive
		m.UpdatedAt = time.Now()
		return nil
	case MovementStatusActive:
		return nil // already active, idempotent
	}
	return shared.NewDomainError("INVALID_STATE", "Only draft or order-pending movements can be activated")
}

// Dispatch flips a distributor-order line to the on-the-way status. The
// dispatch stock decrement is applied exactly when this flip succeeds, so
// reprocessing a delivered queue task becomes a no-op.
func (m *StockMovement) Dispatch() error {
	if m.Status != MovementStatusDistributorOrder {
		return shared.NewDomainError("INVALID_STATE", "Only distributor-order lines can be dispatched")
	}
	m.Status = MovementStatusOrderOnTheWay
	m.UpdatedAt = time.Now()
	return nil
}

// RecallDispatch returns an on-the-way line to the distributor-order status
// when its order is pulled back from delivery.
func (m *StockMovement) RecallDispatch() error {
	if m.Status != MovementStatusOrderOnTheWay {
		return shared.NewDomainError("INVALID_STATE", "Line is not on the way")
	}
	m.Status = MovementStatusDistributorOrder
	m.UpdatedAt = time.Now()
	return nil
}

// Retire soft-deactivates the entry. The caller reverses the stock effect when
// the entry was previously ACTIVE.
func (m *StockMovement) Retire() error {
	if m.Status == MovementStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Movement is already retired")
	}
	m.Status = MovementStatusInactive
	m.UpdatedAt = time.Now()
	return nil
}

// IsActive returns true when the entry is counted in stock
func (m *StockMovement) IsActive() bool {
	return m.Status == MovementStatusActive
}
