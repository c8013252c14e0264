package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByID finds a stock row by its ID
func (r *GormStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Stock, error) {
	var stock inventory.Stock
	if err := r.db.WithContext(ctx).First(&stock, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// FindByIDForTenant finds a stock row by ID within a tenant
func (r *GormStockRepository) FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*inventory.Stock, error) {
	var stock inventory.Stock
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// FindByIDForUpdate loads the row under SELECT ... FOR UPDATE. Must run inside
// a transaction scope; outside one the row lock is released immediately.
func (r *GormStockRepository) FindByIDForUpdate(ctx context.Context, id, tenantID uuid.UUID) (*inventory.Stock, error) {
	var stock inventory.Stock
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// FindByProduct finds the stock for a product at a store point
func (r *GormStockRepository) FindByProduct(ctx context.Context, tenantID, storePointID, productID uuid.UUID) (*inventory.Stock, error) {
	var stock inventory.Stock
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_point_id = ? AND product_id = ?", tenantID, storePointID, productID).
		First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// GetOrCreate returns the stock for the product at the store point, creating an
// empty row when none exists. ON CONFLICT DO NOTHING covers the create race.
func (r *GormStockRepository) GetOrCreate(ctx context.Context, tenantID, storePointID, productID uuid.UUID) (*inventory.Stock, error) {
	stock, err := r.FindByProduct(ctx, tenantID, storePointID, productID)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	stock, err = inventory.NewStock(tenantID, storePointID, productID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_point_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(stock).Error; err != nil {
		return nil, err
	}
	if stock.ID == uuid.Nil {
		return r.FindByProduct(ctx, tenantID, storePointID, productID)
	}
	return stock, nil
}

// Save creates or updates a stock row
func (r *GormStockRepository) Save(ctx context.Context, stock *inventory.Stock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}

// SaveWithLock saves with an optimistic version check
func (r *GormStockRepository) SaveWithLock(ctx context.Context, stock *inventory.Stock) error {
	stock.IncrementVersion()
	result := r.db.WithContext(ctx).
		Model(stock).
		Where("id = ? AND version = ?", stock.ID, stock.Version-1).
		Updates(map[string]interface{}{
			"on_hand":              stock.OnHand,
			"orderable":            stock.Orderable,
			"ecom_stock":           stock.EcomStock,
			"latest_purchase_rate": stock.LatestPurchaseRate,
			"latest_sale_rate":     stock.LatestSaleRate,
			"avg_purchase_rate":    stock.AvgPurchaseRate,
			"is_salesable":         stock.IsSalesable,
			"version":              stock.Version,
			"updated_at":           stock.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Stock was modified by another transaction")
	}
	return nil
}

// ListByStorePoint lists stocks at a store point with the total count.
// The sort column is validated against StockSortFields before it reaches SQL.
func (r *GormStockRepository) ListByStorePoint(ctx context.Context, tenantID, storePointID uuid.UUID, offset, limit int, orderBy, orderDir string) ([]*inventory.Stock, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&inventory.Stock{}).
		Where("tenant_id = ? AND store_point_id = ?", tenantID, storePointID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(orderBy, StockSortFields, "created_at")
	sortOrder := ValidateSortOrder(orderDir)

	var stocks []*inventory.Stock
	if err := query.Order(sortField + " " + sortOrder).Offset(offset).Limit(limit).Find(&stocks).Error; err != nil {
		return nil, 0, err
	}
	return stocks, total, nil
}

// ListSalesable lists salesable stocks for the e-commerce surface
func (r *GormStockRepository) ListSalesable(ctx context.Context, tenantID uuid.UUID) ([]*inventory.Stock, error) {
	var stocks []*inventory.Stock
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_salesable = ?", tenantID, true).
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// Ensure GormStockRepository implements StockRepository
var _ inventory.StockRepository = (*GormStockRepository)(nil)
