package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// DynamicDiscountScope says what a dynamic factor is keyed on
type DynamicDiscountScope string

const (
	// ScopeOrganization targets one customer organization
	ScopeOrganization DynamicDiscountScope = "ORGANIZATION"
	// ScopeArea targets every customer in a delivery area
	ScopeArea DynamicDiscountScope = "AREA"
)

// DynamicDiscount is a customer- or area-specific discount factor that
// overrides the tier table for its subject. When one is active the tier
// progress display is suppressed but the monetary discount still applies.
type DynamicDiscount struct {
	shared.BaseEntity
	TenantID  uuid.UUID            `gorm:"type:uuid;not null;index:idx_dyn_tenant_subject,priority:1"`
	Scope     DynamicDiscountScope `gorm:"type:varchar(20);not null"`
	SubjectID uuid.UUID            `gorm:"type:uuid;not null;index:idx_dyn_tenant_subject,priority:2"`
	Factor    decimal.Decimal      `gorm:"type:decimal(8,4);not null"` // percent
	IsActive  bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (DynamicDiscount) TableName() string {
	return "dynamic_discounts"
}

// NewDynamicDiscount creates a dynamic factor for an organization or area
func NewDynamicDiscount(tenantID, subjectID uuid.UUID, scope DynamicDiscountScope, factor decimal.Decimal) (*DynamicDiscount, error) {
	if tenantID == uuid.Nil || subjectID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant and subject are required")
	}
	if scope != ScopeOrganization && scope != ScopeArea {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid dynamic discount scope")
	}
	if factor.IsNegative() || factor.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Factor must be between 0 and 100")
	}
	return &DynamicDiscount{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Scope:      scope,
		SubjectID:  subjectID,
		Factor:     factor,
		IsActive:   true,
	}, nil
}

// Deactivate retires the factor
func (d *DynamicDiscount) Deactivate() {
	d.IsActive = false
	d.UpdatedAt = time.Now()
}

// Apply computes the monetary discount the factor yields on total
func (d *DynamicDiscount) Apply(total decimal.Decimal) decimal.Decimal {
	return total.Mul(d.Factor).Div(decimal.NewFromInt(100))
}
