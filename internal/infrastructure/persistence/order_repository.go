package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// GormOrderRepository implements the order Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save creates or updates an order
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

// SaveWithLock saves with an optimistic version check
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	o.IncrementVersion()
	result := r.db.WithContext(ctx).
		Model(o).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]interface{}{
			"lifecycle_status":        o.LifecycleStatus,
			"amount":                  o.Amount,
			"discount":                o.Discount,
			"round_discount":          o.RoundDiscount,
			"vat_total":               o.VatTotal,
			"tax_total":               o.TaxTotal,
			"additional_discount":     o.AdditionalDiscount,
			"additional_cost":         o.AdditionalCost,
			"grand_total":             o.GrandTotal,
			"tentative_delivery_date": o.TentativeDeliveryDate,
			"is_queueing_order":       o.IsQueueingOrder,
			"tracking_status":         o.TrackingStatus,
			"version":                 o.Version,
			"updated_at":              o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Order was modified by another transaction")
	}
	return nil
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByIDForTenant finds an order by ID within a tenant
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindBySource returns the order cloned from the given source, if any
func (r *GormOrderRepository) FindBySource(ctx context.Context, sourceOrderID, tenantID uuid.UUID, kind order.OrderKind) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Where("source_order_id = ? AND tenant_id = ? AND kind = ?", sourceOrderID, tenantID, kind).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// ListByGroup returns the orders belonging to a multi-supplier group
func (r *GormOrderRepository) ListByGroup(ctx context.Context, groupID, tenantID uuid.UUID) ([]*order.Order, error) {
	var orders []*order.Order
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND tenant_id = ?", groupID, tenantID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByKind pages orders of one kind with the total count
func (r *GormOrderRepository) ListByKind(ctx context.Context, tenantID uuid.UUID, kind order.OrderKind, offset, limit int) ([]*order.Order, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("tenant_id = ? AND kind = ?", tenantID, kind)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*order.Order
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListInFlightBySupplier returns a supplier's orders that have not reached a
// terminal tracking status.
func (r *GormOrderRepository) ListInFlightBySupplier(ctx context.Context, supplierID, tenantID uuid.UUID) ([]*order.Order, error) {
	terminal := []order.TrackingStatus{
		order.TrackingDelivered,
		order.TrackingPartialDelivered,
		order.TrackingFullReturned,
		order.TrackingCompleted,
		order.TrackingRejected,
		order.TrackingCancelled,
	}
	var orders []*order.Order
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND tenant_id = ? AND tracking_status NOT IN ?", supplierID, tenantID, terminal).
		Where("lifecycle_status <> ?", order.LifecycleInactive).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GormOrderGroupRepository implements GroupRepository using GORM
type GormOrderGroupRepository struct {
	db *gorm.DB
}

// NewGormOrderGroupRepository creates a new GormOrderGroupRepository
func NewGormOrderGroupRepository(db *gorm.DB) *GormOrderGroupRepository {
	return &GormOrderGroupRepository{db: db}
}

// Save creates or updates an order group
func (r *GormOrderGroupRepository) Save(ctx context.Context, group *order.OrderGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

// FindByIDForTenant finds a group by ID within a tenant
func (r *GormOrderGroupRepository) FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*order.OrderGroup, error) {
	var group order.OrderGroup
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

var (
	_ order.Repository      = (*GormOrderRepository)(nil)
	_ order.GroupRepository = (*GormOrderGroupRepository)(nil)
)
