package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists the order aggregate
type Repository interface {
	Save(ctx context.Context, order *Order) error
	SaveWithLock(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*Order, error)
	// FindBySource returns the order cloned from the given source, if any.
	// Completion idempotence hangs on this lookup.
	FindBySource(ctx context.Context, sourceOrderID, tenantID uuid.UUID, kind OrderKind) (*Order, error)
	ListByGroup(ctx context.Context, groupID, tenantID uuid.UUID) ([]*Order, error)
	ListByKind(ctx context.Context, tenantID uuid.UUID, kind OrderKind, offset, limit int) ([]*Order, int64, error)
	ListInFlightBySupplier(ctx context.Context, supplierID, tenantID uuid.UUID) ([]*Order, error)
}

// GroupRepository persists multi-supplier order groups
type GroupRepository interface {
	Save(ctx context.Context, group *OrderGroup) error
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*OrderGroup, error)
}

// TrackingRepository persists the append-only tracking history
type TrackingRepository interface {
	// Append assigns the next sequence number for the order and inserts the
	// event. Events are never updated or deleted.
	Append(ctx context.Context, event *TrackingEvent) error
	Latest(ctx context.Context, orderID, tenantID uuid.UUID) (*TrackingEvent, error)
	ListByOrder(ctx context.Context, orderID, tenantID uuid.UUID) ([]*TrackingEvent, error)
	// CountStatus reports how often the order has held the status
	CountStatus(ctx context.Context, orderID, tenantID uuid.UUID, status TrackingStatus) (int64, error)
}
