package pricing

import (
	"context"

	"github.com/google/uuid"
)

// DiscountTierRepository persists the tiered-discount table
type DiscountTierRepository interface {
	Save(ctx context.Context, tier *DiscountTier) error
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*DiscountTier, error)
	// ListActive returns the active tiers ordered by ascending MinAmount
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]*DiscountTier, error)
}

// DynamicDiscountRepository persists customer/area discount factors
type DynamicDiscountRepository interface {
	Save(ctx context.Context, discount *DynamicDiscount) error
	// FindActiveForSubjects returns the first active factor matching any of
	// the subjects, organization scope taking precedence over area scope
	FindActiveForSubjects(ctx context.Context, tenantID uuid.UUID, organizationID, areaID uuid.UUID) (*DynamicDiscount, error)
}

// CreditRepository persists the procurement credit ledger
type CreditRepository interface {
	Save(ctx context.Context, entry *CreditEntry) error
	SaveWithLock(ctx context.Context, entry *CreditEntry) error
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*CreditEntry, error)
	FindByOrder(ctx context.Context, orderID, tenantID uuid.UUID) (*CreditEntry, error)
	ListOverdue(ctx context.Context, tenantID uuid.UUID) ([]*CreditEntry, error)
}
