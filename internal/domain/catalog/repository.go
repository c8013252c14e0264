package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// OrganizationRepository defines the interface for organization persistence
type OrganizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Organization, error)
	FindByArea(ctx context.Context, tenantID, areaID uuid.UUID) ([]Organization, error)
	// FindInterestedInRestock returns organizations that registered interest in
	// restock reminders for a product.
	FindInterestedInRestock(ctx context.Context, tenantID, productID uuid.UUID) ([]Organization, error)
	Save(ctx context.Context, org *Organization) error
}

// StorePointRepository defines the interface for store point persistence
type StorePointRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StorePoint, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StorePoint, error)
	FindDefault(ctx context.Context, tenantID uuid.UUID) (*StorePoint, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StorePoint, error)
	Save(ctx context.Context, sp *StorePoint) error
}

// RestockInterestRepository persists restock reminder registrations
type RestockInterestRepository interface {
	Save(ctx context.Context, interest *RestockInterest) error
	// DeleteForProduct removes every registration for a product, called after
	// the reminder fan-out consumed them
	DeleteForProduct(ctx context.Context, tenantID, productID uuid.UUID) error
}

// ProductLookup is the read-only view the inventory and order contexts consume.
// It hides catalog persistence behind the minimal surface the ledger needs.
type ProductLookup interface {
	// OrderModeFor returns the ordering policy for a product
	OrderModeFor(ctx context.Context, tenantID, productID uuid.UUID) (OrderMode, error)
	// IsSalesable reports whether the product may be sold through e-commerce
	IsSalesable(ctx context.Context, tenantID, productID uuid.UUID) (bool, error)
}

// OrganizationLookup is the read-only view serving organization settings and
// area/customer discount factors to the pricing context.
type OrganizationLookup interface {
	// SettingsFor returns the organization settings (cached with a defined TTL)
	SettingsFor(ctx context.Context, tenantID, organizationID uuid.UUID) (OrganizationSettings, error)
	// RestockInterest returns organization IDs interested in restock reminders
	RestockInterest(ctx context.Context, tenantID, productID uuid.UUID) ([]uuid.UUID, error)
}
