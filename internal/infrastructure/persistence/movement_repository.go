package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// GormMovementRepository implements MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Create inserts a ledger entry
func (r *GormMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// CreateBatch inserts ledger entries in one statement
func (r *GormMovementRepository) CreateBatch(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// Update saves entry mutations (status flips, short/return registration)
func (r *GormMovementRepository) Update(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Save(movement).Error
}

// FindByID finds a ledger entry by ID within a tenant
func (r *GormMovementRepository) FindByID(ctx context.Context, id, tenantID uuid.UUID) (*inventory.StockMovement, error) {
	var movement inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByOrder returns the entries attached to an order
func (r *GormMovementRepository) FindByOrder(ctx context.Context, orderID, tenantID uuid.UUID) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND tenant_id = ?", orderID, tenantID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByStock returns the entries for a stock within a date range
func (r *GormMovementRepository) FindByStock(ctx context.Context, stockID, tenantID uuid.UUID, from, to time.Time) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("stock_id = ? AND tenant_id = ? AND movement_date >= ? AND movement_date < ?",
			stockID, tenantID, from, to).
		Order("movement_date ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// SumActiveByStock returns the signed IN/OUT totals over ACTIVE entries
func (r *GormMovementRepository) SumActiveByStock(ctx context.Context, stockID, tenantID uuid.UUID) (inventory.MovementSum, error) {
	var row struct {
		In  decimal.Decimal
		Out decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select(`COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity * CASE WHEN secondary_unit THEN conversion_factor ELSE 1 END ELSE 0 END), 0) AS "in",
			COALESCE(SUM(CASE WHEN direction = 'OUT' THEN quantity * CASE WHEN secondary_unit THEN conversion_factor ELSE 1 END ELSE 0 END), 0) AS "out"`).
		Where("stock_id = ? AND tenant_id = ? AND status = ?",
			stockID, tenantID, inventory.MovementStatusActive).
		Scan(&row).Error; err != nil {
		return inventory.MovementSum{}, err
	}
	return inventory.MovementSum{StockID: stockID, In: row.In, Out: row.Out}, nil
}

// deliverableQuantitySQL clamps each entry's deliverable quantity at zero.
// Written as CASE WHEN rather than GREATEST so the expression runs on sqlite
// as well as postgres.
const deliverableQuantitySQL = `stock_movements.quantity * CASE WHEN stock_movements.secondary_unit THEN stock_movements.conversion_factor ELSE 1 END - stock_movements.short_quantity - stock_movements.return_quantity`

// SumAttachedToOrders totals the deliverable quantity of non-retired entries
// whose owning order currently holds one of the given tracking statuses.
// Queueing orders only count while in one of queueingStatuses.
func (r *GormMovementRepository) SumAttachedToOrders(ctx context.Context, stockID, tenantID uuid.UUID, trackingStatuses, queueingStatuses []string) (decimal.Decimal, error) {
	if len(trackingStatuses) == 0 {
		return decimal.Zero, nil
	}
	if len(queueingStatuses) == 0 {
		queueingStatuses = trackingStatuses
	}
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select(`COALESCE(SUM(CASE WHEN `+deliverableQuantitySQL+` > 0 THEN `+deliverableQuantitySQL+` ELSE 0 END), 0) AS total`).
		Joins("JOIN orders ON orders.id = stock_movements.order_id").
		Where("stock_movements.stock_id = ? AND stock_movements.tenant_id = ? AND stock_movements.status <> ?",
			stockID, tenantID, inventory.MovementStatusInactive).
		Where("orders.tracking_status IN ?", trackingStatuses).
		Where("(orders.is_queueing_order = ? OR orders.tracking_status IN ?)", false, queueingStatuses).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// UpdateStatus flips the status of every entry attached to the order
func (r *GormMovementRepository) UpdateStatus(ctx context.Context, orderID, tenantID uuid.UUID, from, to inventory.MovementStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("order_id = ? AND tenant_id = ? AND status = ?", orderID, tenantID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// ReplaceStockReference repoints entries from one stock row to another
func (r *GormMovementRepository) ReplaceStockReference(ctx context.Context, fromStockID, toStockID, tenantID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("stock_id = ? AND tenant_id = ?", fromStockID, tenantID).
		Updates(map[string]interface{}{
			"stock_id":   toStockID,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Ensure GormMovementRepository implements MovementRepository
var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
