package pricing

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// DiscountTier is one rule in the ordered tiered-discount table: carts at or
// above MinAmount earn DiscountPercent.
type DiscountTier struct {
	shared.BaseEntity
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_tier_tenant_min,priority:1"`
	MinAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;index:idx_tier_tenant_min,priority:2"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	IsActive        bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (DiscountTier) TableName() string {
	return "discount_tiers"
}

// NewDiscountTier creates a tier rule
func NewDiscountTier(tenantID uuid.UUID, minAmount, discountPercent decimal.Decimal) (*DiscountTier, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant ID cannot be empty")
	}
	if minAmount.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Minimum amount cannot be negative")
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Discount percent must be between 0 and 100")
	}
	return &DiscountTier{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        tenantID,
		MinAmount:       minAmount,
		DiscountPercent: discountPercent,
		IsActive:        true,
	}, nil
}

// Deactivate retires the tier rule
func (t *DiscountTier) Deactivate() {
	t.IsActive = false
	t.UpdatedAt = time.Now()
}

// TierMatch is the result of a tiered-discount lookup
type TierMatch struct {
	// Tier is the highest tier whose MinAmount <= total, nil below the
	// lowest tier
	Tier *DiscountTier
	// DiscountPercent is zero when no tier matched
	DiscountPercent decimal.Decimal
	// DiscountAmount is the monetary discount on the looked-up total
	DiscountAmount decimal.Decimal
	// NextTier is the next level up, nil at the top
	NextTier *DiscountTier
	// AmountToNext is how much more spend reaches NextTier, zero at the top
	AmountToNext decimal.Decimal
	// Suppressed hides tier progress display when a dynamic discount factor
	// overrides the tier table; the monetary discount still applies
	Suppressed bool
}

// DiscountForAmount walks the tier table and returns the highest tier whose
// minimum is covered by total, plus the distance to the next tier. Inactive
// rules are skipped. The slice is not mutated.
func DiscountForAmount(tiers []*DiscountTier, total decimal.Decimal) TierMatch {
	active := make([]*DiscountTier, 0, len(tiers))
	for _, t := range tiers {
		if t.IsActive {
			active = append(active, t)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].MinAmount.LessThan(active[j].MinAmount)
	})

	match := TierMatch{
		DiscountPercent: decimal.Zero,
		DiscountAmount:  decimal.Zero,
		AmountToNext:    decimal.Zero,
	}
	for _, t := range active {
		if t.MinAmount.LessThanOrEqual(total) {
			match.Tier = t
			continue
		}
		match.NextTier = t
		match.AmountToNext = t.MinAmount.Sub(total)
		break
	}
	if match.Tier != nil {
		match.DiscountPercent = match.Tier.DiscountPercent
		match.DiscountAmount = total.Mul(match.Tier.DiscountPercent).Div(decimal.NewFromInt(100))
	}
	return match
}
