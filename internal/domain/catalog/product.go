package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// OrderMode is the policy governing whether stock availability gates e-commerce ordering.
type OrderMode string

const (
	// OrderModeOpen accepts orders regardless of stock
	OrderModeOpen OrderMode = "OPEN"
	// OrderModeStock requires orderable stock to cover the order
	OrderModeStock OrderMode = "STOCK"
	// OrderModeStockAndNextDay allows queueing a next-day order when stock runs out
	OrderModeStockAndNextDay OrderMode = "STOCK_AND_NEXT_DAY"
	// OrderModeStockAndOpen prefers stock but falls back to open ordering
	OrderModeStockAndOpen OrderMode = "STOCK_AND_OPEN"
)

// IsValid returns true for a known order mode
func (m OrderMode) IsValid() bool {
	switch m {
	case OrderModeOpen, OrderModeStock, OrderModeStockAndNextDay, OrderModeStockAndOpen:
		return true
	}
	return false
}

// String returns the string representation
func (m OrderMode) String() string {
	return string(m)
}

// RequiresStock returns true when orders must be backed by orderable stock
func (m OrderMode) RequiresStock() bool {
	return m == OrderModeStock || m == OrderModeStockAndNextDay || m == OrderModeStockAndOpen
}

// AllowsQueueing returns true when a next-day queueing order may be placed
// once orderable stock is exhausted.
func (m OrderMode) AllowsQueueing() bool {
	return m == OrderModeStockAndNextDay
}

// Product is the catalog entry the ledger references. The catalog itself is a
// read-mostly collaborator; only the fields the inventory and order contexts
// depend on are modeled here.
type Product struct {
	shared.TenantAggregateRoot
	Name           string          `gorm:"type:varchar(255);not null"`
	Code           string          `gorm:"type:varchar(50);not null;index"`
	GenericName    string          `gorm:"type:varchar(255)"`
	Manufacturer   string          `gorm:"type:varchar(255)"`
	OrderMode      OrderMode       `gorm:"type:varchar(30);not null;default:'STOCK'"`
	IsSalesable    bool            `gorm:"not null;default:true"`
	IsService      bool            `gorm:"not null;default:false"`
	TradePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ConversionRate decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"` // secondary unit -> primary unit
	PrimaryUnit    string          `gorm:"type:varchar(30)"`
	SecondaryUnit  string          `gorm:"type:varchar(30)"`
	Status         shared.RecordStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new catalog product
func NewProduct(tenantID uuid.UUID, name, code string) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product code cannot be empty")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Code:                code,
		OrderMode:           OrderModeStock,
		IsSalesable:         true,
		TradePrice:          decimal.Zero,
		ConversionRate:      decimal.NewFromInt(1),
		Status:              shared.RecordStatusActive,
	}, nil
}

// SetOrderMode changes the ordering policy
func (p *Product) SetOrderMode(mode OrderMode) error {
	if !mode.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Invalid order mode")
	}
	p.OrderMode = mode
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetSalesable toggles e-commerce availability
func (p *Product) SetSalesable(salesable bool) {
	p.IsSalesable = salesable
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate soft-deletes the product
func (p *Product) Deactivate() {
	p.Status = shared.RecordStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == shared.RecordStatusActive
}
