package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/shared"
)

// GormTrackingRepository implements TrackingRepository using GORM. The history
// is append-only; rows are never updated or deleted.
type GormTrackingRepository struct {
	db *gorm.DB
}

// NewGormTrackingRepository creates a new GormTrackingRepository
func NewGormTrackingRepository(db *gorm.DB) *GormTrackingRepository {
	return &GormTrackingRepository{db: db}
}

// Append assigns the next sequence number for the order and inserts the event.
// The unique (order_id, sequence) index turns a concurrent append into a
// constraint violation instead of a silent duplicate.
func (r *GormTrackingRepository) Append(ctx context.Context, event *order.TrackingEvent) error {
	var maxSeq int64
	if err := r.db.WithContext(ctx).
		Model(&order.TrackingEvent{}).
		Select("COALESCE(MAX(sequence), 0)").
		Where("order_id = ? AND tenant_id = ?", event.OrderID, event.TenantID).
		Scan(&maxSeq).Error; err != nil {
		return err
	}
	event.Sequence = maxSeq + 1
	return r.db.WithContext(ctx).Create(event).Error
}

// Latest returns the most recent tracking event for an order
func (r *GormTrackingRepository) Latest(ctx context.Context, orderID, tenantID uuid.UUID) (*order.TrackingEvent, error) {
	var event order.TrackingEvent
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND tenant_id = ?", orderID, tenantID).
		Order("sequence DESC").
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// ListByOrder returns the full tracking history in sequence order
func (r *GormTrackingRepository) ListByOrder(ctx context.Context, orderID, tenantID uuid.UUID) ([]*order.TrackingEvent, error) {
	var events []*order.TrackingEvent
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND tenant_id = ?", orderID, tenantID).
		Order("sequence ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CountStatus reports how often the order has held the status
func (r *GormTrackingRepository) CountStatus(ctx context.Context, orderID, tenantID uuid.UUID, status order.TrackingStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.TrackingEvent{}).
		Where("order_id = ? AND tenant_id = ? AND status = ?", orderID, tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormTrackingRepository implements TrackingRepository
var _ order.TrackingRepository = (*GormTrackingRepository)(nil)
