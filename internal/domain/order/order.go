package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// OrderKind discriminates the order lifecycle variants that share one table.
// A kind is fixed at construction; the completion flow clones an order into
// the next kind rather than mutating it in place.
type OrderKind string

const (
	// KindCart is an open shopping cart on the e-commerce surface
	KindCart OrderKind = "CART"
	// KindRequisition is a submitted purchase requisition
	KindRequisition OrderKind = "REQUISITION"
	// KindPurchaseOrder is a requisition approved into an order to a supplier
	KindPurchaseOrder OrderKind = "PURCHASE_ORDER"
	// KindPurchase is a completed purchase with stock-affecting movements
	KindPurchase OrderKind = "PURCHASE"
	// KindVendorOrder is a distributor order received from a customer org
	KindVendorOrder OrderKind = "VENDOR_ORDER"
)

// IsValid returns true for a known kind
func (k OrderKind) IsValid() bool {
	switch k {
	case KindCart, KindRequisition, KindPurchaseOrder, KindPurchase, KindVendorOrder:
		return true
	}
	return false
}

// String returns the string representation
func (k OrderKind) String() string {
	return string(k)
}

// InitialLifecycleStatus returns the lifecycle status an order of this kind
// is born with.
func (k OrderKind) InitialLifecycleStatus() LifecycleStatus {
	switch k {
	case KindCart:
		return LifecycleInProgress
	case KindRequisition:
		return LifecycleDraft
	case KindPurchaseOrder:
		return LifecyclePurchaseOrder
	case KindPurchase:
		return LifecycleActive
	case KindVendorOrder:
		return LifecycleDistributorOrder
	}
	return LifecycleDraft
}

// allowsLifecycle reports whether the lifecycle status is legal for the kind
func (k OrderKind) allowsLifecycle(s LifecycleStatus) bool {
	if s == LifecycleInactive {
		return true // any order can be soft-deactivated
	}
	switch k {
	case KindCart:
		return s == LifecycleInProgress
	case KindRequisition:
		return s == LifecycleDraft
	case KindPurchaseOrder:
		return s == LifecyclePurchaseOrder
	case KindPurchase:
		return s == LifecycleActive
	case KindVendorOrder:
		return s == LifecycleDistributorOrder
	}
	return false
}

// LifecycleStatus is the per-kind lifecycle marker. Together with OrderKind it
// forms the tagged union; delivery progress lives in the tracking events, not
// here.
type LifecycleStatus string

const (
	LifecycleInProgress       LifecycleStatus = "IN_PROGRESS"
	LifecycleDraft            LifecycleStatus = "DRAFT"
	LifecyclePurchaseOrder    LifecycleStatus = "PURCHASE_ORDER"
	LifecycleActive           LifecycleStatus = "ACTIVE"
	LifecycleDistributorOrder LifecycleStatus = "DISTRIBUTOR_ORDER"
	// LifecycleInactive marks a soft-deactivated order (superseded by a copy)
	LifecycleInactive LifecycleStatus = "INACTIVE"
)

// String returns the string representation
func (s LifecycleStatus) String() string {
	return string(s)
}

// GrandTotalScale is the fixed-point scale grand totals are rounded to. The
// round discount absorbs the remainder so the totals identity foots exactly.
const GrandTotalScale int32 = 0

// Order is the order aggregate: one entity serving carts, requisitions,
// purchase orders, completed purchases and distributor orders, discriminated
// by (Kind, LifecycleStatus). Line items are ledger movements owned by the
// inventory context and reference the order by ID.
//
// Totals invariant, maintained by recalculate():
//
//	GrandTotal = Amount - Discount + RoundDiscount + VatTotal + TaxTotal
//	             - AdditionalDiscount + AdditionalCost
type Order struct {
	shared.TenantAggregateRoot
	Kind            OrderKind       `gorm:"type:varchar(20);not null;index"`
	LifecycleStatus LifecycleStatus `gorm:"type:varchar(30);not null;index"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceiverID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	StorePointID    uuid.UUID       `gorm:"type:uuid;not null"`

	Amount             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RoundDiscount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VatTotal           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxTotal           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdditionalDiscount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdditionalCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	TentativeDeliveryDate *time.Time     `gorm:"type:date"`
	IsQueueingOrder       bool           `gorm:"not null;default:false"`
	TrackingStatus        TrackingStatus `gorm:"type:varchar(30);not null;default:'PENDING'"`

	GroupID       *uuid.UUID `gorm:"type:uuid;index"` // multi-supplier basket
	SourceOrderID *uuid.UUID `gorm:"type:uuid;index"` // requisition this was cloned from
	CopiedFromID  *uuid.UUID `gorm:"type:uuid;index"` // order this edit superseded
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder constructs an order of the given kind with the kind's initial
// lifecycle status.
func NewOrder(tenantID uuid.UUID, kind OrderKind, supplierID, receiverID, storePointID uuid.UUID) (*Order, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid order kind")
	}
	if supplierID == uuid.Nil || receiverID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Supplier and receiver are required")
	}
	if storePointID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Store point is required")
	}

	o := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                kind,
		LifecycleStatus:     kind.InitialLifecycleStatus(),
		SupplierID:          supplierID,
		ReceiverID:          receiverID,
		StorePointID:        storePointID,
		TrackingStatus:      TrackingPending,
	}
	return o, nil
}

// MarkQueueing flags the order as a next-day queueing order. Queueing orders
// enter tracking at IN_QUEUE instead of PENDING.
func (o *Order) MarkQueueing() {
	o.IsQueueingOrder = true
	o.TrackingStatus = TrackingInQueue
	o.UpdatedAt = time.Now()
}

// SetTentativeDeliveryDate records the promised delivery date
func (o *Order) SetTentativeDeliveryDate(date time.Time) {
	d := date
	o.TentativeDeliveryDate = &d
	o.UpdatedAt = time.Now()
}

// SetLineTotals replaces the line-derived totals and recomputes the grand
// total. Callers pass sums over the order's ledger movements.
func (o *Order) SetLineTotals(amount, discount, vat, tax decimal.Decimal) error {
	if amount.IsNegative() || discount.IsNegative() || vat.IsNegative() || tax.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Totals cannot be negative")
	}
	o.Amount = amount
	o.Discount = discount
	o.VatTotal = vat
	o.TaxTotal = tax
	o.recalculate()
	return nil
}

// ApplyAdditionalDiscountAmount sets a flat additional discount
func (o *Order) ApplyAdditionalDiscountAmount(amount decimal.Decimal) error {
	if o.IsTerminal() {
		return shared.NewDomainError("TERMINAL_STATUS", "Cannot discount a terminal order")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Additional discount cannot be negative")
	}
	if amount.GreaterThan(o.Amount.Sub(o.Discount)) {
		return shared.NewDomainError("VALIDATION_ERROR", "Additional discount exceeds the order subtotal")
	}
	o.AdditionalDiscount = amount
	o.recalculate()
	return nil
}

// ApplyAdditionalDiscountPercent sets the additional discount as a percentage
// of the discounted subtotal.
func (o *Order) ApplyAdditionalDiscountPercent(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("VALIDATION_ERROR", "Percent must be between 0 and 100")
	}
	subTotal := o.Amount.Sub(o.Discount)
	return o.ApplyAdditionalDiscountAmount(subTotal.Mul(percent).Div(decimal.NewFromInt(100)))
}

// SetAdditionalCost sets delivery or handling charges carried on the order
func (o *Order) SetAdditionalCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Additional cost cannot be negative")
	}
	o.AdditionalCost = cost
	o.recalculate()
	return nil
}

// SubTotal is amount minus line discounts
func (o *Order) SubTotal() decimal.Decimal {
	return o.Amount.Sub(o.Discount)
}

// recalculate rounds the footed total to the grand-total scale and stores the
// rounding remainder as RoundDiscount so the identity holds exactly.
func (o *Order) recalculate() {
	raw := o.Amount.
		Sub(o.Discount).
		Add(o.VatTotal).
		Add(o.TaxTotal).
		Sub(o.AdditionalDiscount).
		Add(o.AdditionalCost)
	rounded := raw.Round(GrandTotalScale)
	o.RoundDiscount = rounded.Sub(raw)
	o.GrandTotal = rounded
	o.UpdatedAt = time.Now()
}

// CloneAs produces a new order of the target kind carrying this order's
// parties, totals and delivery date, back-referencing this order as the
// source. The completion flow uses it twice: requisition to purchase order,
// then purchase order to purchase.
func (o *Order) CloneAs(kind OrderKind) (*Order, error) {
	clone, err := NewOrder(o.TenantID, kind, o.SupplierID, o.ReceiverID, o.StorePointID)
	if err != nil {
		return nil, err
	}
	clone.Amount = o.Amount
	clone.Discount = o.Discount
	clone.VatTotal = o.VatTotal
	clone.TaxTotal = o.TaxTotal
	clone.AdditionalDiscount = o.AdditionalDiscount
	clone.AdditionalCost = o.AdditionalCost
	clone.recalculate()
	clone.TentativeDeliveryDate = o.TentativeDeliveryDate
	clone.IsQueueingOrder = o.IsQueueingOrder
	clone.GroupID = o.GroupID
	sourceID := o.ID
	clone.SourceOrderID = &sourceID
	return clone, nil
}

// Copy produces an editable replacement of this order and soft-deactivates
// the original. The copy carries a back-reference for audit.
func (o *Order) Copy() (*Order, error) {
	if o.LifecycleStatus == LifecycleInactive {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot copy a deactivated order")
	}
	cp, err := NewOrder(o.TenantID, o.Kind, o.SupplierID, o.ReceiverID, o.StorePointID)
	if err != nil {
		return nil, err
	}
	cp.Amount = o.Amount
	cp.Discount = o.Discount
	cp.VatTotal = o.VatTotal
	cp.TaxTotal = o.TaxTotal
	cp.AdditionalDiscount = o.AdditionalDiscount
	cp.AdditionalCost = o.AdditionalCost
	cp.recalculate()
	cp.TentativeDeliveryDate = o.TentativeDeliveryDate
	cp.IsQueueingOrder = o.IsQueueingOrder
	cp.TrackingStatus = o.TrackingStatus
	cp.GroupID = o.GroupID
	cp.SourceOrderID = o.SourceOrderID
	fromID := o.ID
	cp.CopiedFromID = &fromID

	o.Deactivate()
	return cp, nil
}

// Deactivate soft-deletes the order
func (o *Order) Deactivate() {
	o.LifecycleStatus = LifecycleInactive
	o.UpdatedAt = time.Now()
}

// IsActive reports whether the order has not been soft-deactivated
func (o *Order) IsActive() bool {
	return o.LifecycleStatus != LifecycleInactive
}

// IsTerminal reports whether the tracking projection reached a terminal state
func (o *Order) IsTerminal() bool {
	return o.TrackingStatus.IsTerminal()
}

// ApplyTrackingStatus updates the current-status projection from a newly
// appended tracking event. Transition legality is validated where the event
// is appended; the projection only refuses to move off a terminal state.
func (o *Order) ApplyTrackingStatus(status TrackingStatus) error {
	if o.TrackingStatus == status {
		return nil
	}
	if o.TrackingStatus.IsTerminal() {
		return shared.NewDomainError("TERMINAL_STATUS", "Order has reached a terminal status")
	}
	previous := o.TrackingStatus
	o.TrackingStatus = status
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderTrackingChangedEvent(o, previous, status))
	return nil
}

// Cancel moves the order to the CANCELLED terminal state
func (o *Order) Cancel() error {
	if !o.TrackingStatus.CanTransitionTo(TrackingCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be cancelled from its current status")
	}
	return o.ApplyTrackingStatus(TrackingCancelled)
}

// Reject moves the order to the REJECTED terminal state
func (o *Order) Reject() error {
	if !o.TrackingStatus.CanTransitionTo(TrackingRejected) {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be rejected from its current status")
	}
	return o.ApplyTrackingStatus(TrackingRejected)
}
