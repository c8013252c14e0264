package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRepository persists the stock aggregate
type StockRepository interface {
	Save(ctx context.Context, stock *Stock) error
	// SaveWithLock persists with an optimistic version check and increments
	// the version on success
	SaveWithLock(ctx context.Context, stock *Stock) error
	FindByID(ctx context.Context, id uuid.UUID) (*Stock, error)
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*Stock, error)
	// FindByIDForUpdate loads the row under SELECT ... FOR UPDATE; must run
	// inside a transaction scope
	FindByIDForUpdate(ctx context.Context, id, tenantID uuid.UUID) (*Stock, error)
	FindByProduct(ctx context.Context, tenantID, storePointID, productID uuid.UUID) (*Stock, error)
	// GetOrCreate returns the stock for the product at the store point,
	// creating an empty record when none exists
	GetOrCreate(ctx context.Context, tenantID, storePointID, productID uuid.UUID) (*Stock, error)
	// ListByStorePoint pages through the stocks at a store point; orderBy is
	// validated against a column whitelist by the implementation
	ListByStorePoint(ctx context.Context, tenantID, storePointID uuid.UUID, offset, limit int, orderBy, orderDir string) ([]*Stock, int64, error)
	ListSalesable(ctx context.Context, tenantID uuid.UUID) ([]*Stock, error)
}

// MovementSum is the ledger-derived quantity totals for one stock
type MovementSum struct {
	StockID uuid.UUID
	In      decimal.Decimal
	Out     decimal.Decimal
}

// Net returns in minus out
func (s MovementSum) Net() decimal.Decimal {
	return s.In.Sub(s.Out)
}

// MovementRepository persists the append-only movement ledger
type MovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	CreateBatch(ctx context.Context, movements []*StockMovement) error
	Update(ctx context.Context, movement *StockMovement) error
	FindByID(ctx context.Context, id, tenantID uuid.UUID) (*StockMovement, error)
	FindByOrder(ctx context.Context, orderID, tenantID uuid.UUID) ([]*StockMovement, error)
	FindByStock(ctx context.Context, stockID, tenantID uuid.UUID, from, to time.Time) ([]*StockMovement, error)
	// SumActiveByStock returns the signed IN/OUT totals over ACTIVE entries,
	// the ledger side of the reconciliation invariant
	SumActiveByStock(ctx context.Context, stockID, tenantID uuid.UUID) (MovementSum, error)
	// SumAttachedToOrders totals the deliverable quantity of entries whose
	// owning order currently holds one of the given tracking statuses, so
	// orderable stock can be rebuilt from scratch. Queueing orders are held
	// to the narrower queueingStatuses list. Statuses are passed as strings
	// to keep this context free of the order context's types.
	SumAttachedToOrders(ctx context.Context, stockID, tenantID uuid.UUID, trackingStatuses, queueingStatuses []string) (decimal.Decimal, error)
	// UpdateStatus flips the status of every entry attached to the order
	UpdateStatus(ctx context.Context, orderID, tenantID uuid.UUID, from, to MovementStatus) (int64, error)
	// ReplaceStockReference repoints entries from one stock row to another,
	// used when duplicate stock rows are merged
	ReplaceStockReference(ctx context.Context, fromStockID, toStockID, tenantID uuid.UUID) (int64, error)
}
