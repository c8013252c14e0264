package persistence

import (
	"context"

	"gorm.io/gorm"

	invapp "github.com/pharmalink/backend/internal/application/inventory"
	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/order"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Repositories handed to the callback share one transaction, so row locks
// taken through FindByIDForUpdate hold until commit or rollback.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction. An error
// rolls the transaction back; success commits it.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos invapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// StockRepo returns the stock repository scoped to the current transaction
func (r *gormTransactionalRepositories) StockRepo() inventory.StockRepository {
	return NewGormStockRepository(r.tx)
}

// MovementRepo returns the ledger repository scoped to the current transaction
func (r *gormTransactionalRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *gormTransactionalRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

// TrackingRepo returns the tracking repository scoped to the current transaction
func (r *gormTransactionalRepositories) TrackingRepo() order.TrackingRepository {
	return NewGormTrackingRepository(r.tx)
}

var (
	_ invapp.TransactionScope           = (*GormTransactionScope)(nil)
	_ invapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
