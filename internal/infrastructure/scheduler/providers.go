package scheduler

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockProvider implements TenantProvider and StockProvider over the
// stocks table.
type GormStockProvider struct {
	db *gorm.DB
}

var (
	_ TenantProvider = (*GormStockProvider)(nil)
	_ StockProvider  = (*GormStockProvider)(nil)
)

// NewGormStockProvider creates a new GormStockProvider
func NewGormStockProvider(db *gorm.DB) *GormStockProvider {
	return &GormStockProvider{db: db}
}

// ActiveTenantIDs returns every tenant that holds stock
func (p *GormStockProvider) ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("stocks").
		Distinct("tenant_id").
		Find(&ids).Error
	return ids, err
}

// ListStockIDs pages through a tenant's stock rows in stable order
func (p *GormStockProvider) ListStockIDs(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("stocks").
		Select("id").
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&ids).Error
	return ids, err
}
