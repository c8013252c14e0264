package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// OrderGroup is a multi-supplier basket: several supplier orders placed
// together by one receiver share group-level totals and an additional
// discount split across members.
type OrderGroup struct {
	shared.TenantAggregateRoot
	ReceiverID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SubTotal           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RoundDiscount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdditionalDiscount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdditionalCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OrderCount         int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderGroup) TableName() string {
	return "order_groups"
}

// NewOrderGroup creates an empty basket for a receiver
func NewOrderGroup(tenantID, receiverID uuid.UUID) (*OrderGroup, error) {
	if tenantID == uuid.Nil || receiverID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant and receiver are required")
	}
	return &OrderGroup{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReceiverID:          receiverID,
	}, nil
}

// RecomputeFromOrders folds the member orders' totals into the group.
// Deactivated members are skipped.
func (g *OrderGroup) RecomputeFromOrders(orders []*Order) {
	subTotal := decimal.Zero
	discount := decimal.Zero
	roundDiscount := decimal.Zero
	additionalDiscount := decimal.Zero
	additionalCost := decimal.Zero
	grandTotal := decimal.Zero
	count := 0

	for _, o := range orders {
		if !o.IsActive() {
			continue
		}
		subTotal = subTotal.Add(o.Amount)
		discount = discount.Add(o.Discount)
		roundDiscount = roundDiscount.Add(o.RoundDiscount)
		additionalDiscount = additionalDiscount.Add(o.AdditionalDiscount)
		additionalCost = additionalCost.Add(o.AdditionalCost)
		grandTotal = grandTotal.Add(o.GrandTotal)
		count++
	}

	g.SubTotal = subTotal
	g.Discount = discount
	g.RoundDiscount = roundDiscount
	g.AdditionalDiscount = additionalDiscount
	g.AdditionalCost = additionalCost
	g.GrandTotal = grandTotal
	g.OrderCount = count
	g.UpdatedAt = time.Now()
}

// SplitAdditionalDiscount distributes a group-level discount across the
// member orders in proportion to their subtotals. The last member absorbs the
// rounding remainder so the pieces sum exactly to the whole.
func (g *OrderGroup) SplitAdditionalDiscount(total decimal.Decimal, orders []*Order) error {
	if total.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Discount cannot be negative")
	}
	active := make([]*Order, 0, len(orders))
	base := decimal.Zero
	for _, o := range orders {
		if o.IsActive() {
			active = append(active, o)
			base = base.Add(o.SubTotal())
		}
	}
	if len(active) == 0 || base.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Group has no discountable orders")
	}
	if total.GreaterThan(base) {
		return shared.NewDomainError("VALIDATION_ERROR", "Discount exceeds the group subtotal")
	}

	assigned := decimal.Zero
	for i, o := range active {
		var share decimal.Decimal
		if i == len(active)-1 {
			share = total.Sub(assigned)
		} else {
			share = total.Mul(o.SubTotal()).Div(base).Round(2)
			assigned = assigned.Add(share)
		}
		if err := o.ApplyAdditionalDiscountAmount(share); err != nil {
			return err
		}
	}
	g.RecomputeFromOrders(active)
	return nil
}
