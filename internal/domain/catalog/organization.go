package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// AllowOrderFrom is the organization policy for which channel may place orders.
type AllowOrderFrom string

const (
	AllowOrderFromStock        AllowOrderFrom = "STOCK"
	AllowOrderFromOpen         AllowOrderFrom = "OPEN"
	AllowOrderFromStockAndOpen AllowOrderFrom = "STOCK_AND_OPEN"
)

// IsValid returns true for a known policy
func (a AllowOrderFrom) IsValid() bool {
	switch a {
	case AllowOrderFromStock, AllowOrderFromOpen, AllowOrderFromStockAndOpen:
		return true
	}
	return false
}

// OrganizationSettings carries the per-organization knobs the order and pricing
// contexts read. Settings are served through the ConfigProvider with a defined
// TTL instead of a global mutable cache.
type OrganizationSettings struct {
	AllowOrderFrom        AllowOrderFrom  `json:"allow_order_from"`
	DefaultCreditPercent  decimal.Decimal `json:"default_credit_percent"`
	DefaultCreditTermDays int             `json:"default_credit_term_days"`
	// DynamicDiscountFactor, when positive, replaces tiered discount display
	// for this organization; the monetary discount still applies.
	DynamicDiscountFactor decimal.Decimal `json:"dynamic_discount_factor"`
}

// Organization is a tenant-visible trading party: a pharmacy, a distributor
// store point owner, or a supplier organization.
type Organization struct {
	shared.TenantAggregateRoot
	Name     string               `gorm:"type:varchar(255);not null"`
	Phone    string               `gorm:"type:varchar(30);index"`
	AreaID   *uuid.UUID           `gorm:"type:uuid;index"`
	Settings OrganizationSettings `gorm:"serializer:json"`
	Status   shared.RecordStatus  `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates a new organization
func NewOrganization(tenantID uuid.UUID, name string) (*Organization, error) {
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Organization name cannot be empty")
	}
	return &Organization{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Settings: OrganizationSettings{
			AllowOrderFrom: AllowOrderFromStockAndOpen,
		},
		Status: shared.RecordStatusActive,
	}, nil
}

// HasDynamicDiscount returns true when a dynamic discount factor is active
func (o *Organization) HasDynamicDiscount() bool {
	return o.Settings.DynamicDiscountFactor.IsPositive()
}

// UpdateSettings replaces the organization settings
func (o *Organization) UpdateSettings(settings OrganizationSettings) error {
	if !settings.AllowOrderFrom.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Invalid allow-order-from policy")
	}
	if settings.DynamicDiscountFactor.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Dynamic discount factor cannot be negative")
	}
	o.Settings = settings
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// StorePoint is a physical stock location (warehouse, outlet, hub) from which
// stocks are tracked and orders fulfilled.
type StorePoint struct {
	shared.TenantAggregateRoot
	Name           string              `gorm:"type:varchar(255);not null"`
	OrganizationID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Address        string              `gorm:"type:varchar(500)"`
	IsDefault      bool                `gorm:"not null;default:false"`
	Status         shared.RecordStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (StorePoint) TableName() string {
	return "store_points"
}

// NewStorePoint creates a new store point
func NewStorePoint(tenantID, organizationID uuid.UUID, name string) (*StorePoint, error) {
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Store point name cannot be empty")
	}
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Organization ID cannot be empty")
	}
	return &StorePoint{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		OrganizationID:      organizationID,
		Status:              shared.RecordStatusActive,
	}, nil
}
