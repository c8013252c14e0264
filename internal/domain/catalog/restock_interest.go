package catalog

import (
	"github.com/google/uuid"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// RestockInterest registers an organization's wish to be told when a product
// comes back into salesable stock. One reminder fires per registration; the
// row is consumed by the fan-out.
type RestockInterest struct {
	shared.BaseEntity
	TenantID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_restock_interest,priority:1"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_restock_interest,priority:2"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_restock_interest,priority:3"`
}

// TableName returns the table name for GORM
func (RestockInterest) TableName() string {
	return "restock_interests"
}

// NewRestockInterest registers interest in a product restock
func NewRestockInterest(tenantID, productID, organizationID uuid.UUID) (*RestockInterest, error) {
	if tenantID == uuid.Nil || productID == uuid.Nil || organizationID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant, product and organization are required")
	}
	return &RestockInterest{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		ProductID:      productID,
		OrganizationID: organizationID,
	}, nil
}
