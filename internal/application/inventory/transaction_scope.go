package inventory

import (
	"context"

	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the inventory and order
// repositories. When a function is executed within a transaction scope, all
// repository operations will be part of the same database transaction and
// will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories that take
// part in ledger and order-transition transactions. All repositories
// returned share the same underlying database transaction.
//
// Aggregate boundary notes:
//   - StockRepo: the Stock aggregate. Every on-hand/orderable mutation goes
//     through here, and the row lock on the stock id is acquired through
//     FindByIDForUpdate before any decrement.
//   - MovementRepo: append-only ledger entries. Entries are child records of
//     an order line but stored independently for ledger queries.
//   - OrderRepo / TrackingRepo: the order aggregate and its append-only
//     tracking history, joined into the same transaction so a transition and
//     its projection update commit together.
type TransactionalRepositories interface {
	// StockRepo returns the stock repository scoped to the current transaction
	StockRepo() inventory.StockRepository
	// MovementRepo returns the ledger repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
	// TrackingRepo returns the tracking repository scoped to the current transaction
	TrackingRepo() order.TrackingRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	stockRepo    inventory.StockRepository
	movementRepo inventory.MovementRepository
	orderRepo    order.Repository
	trackingRepo order.TrackingRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	stockRepo inventory.StockRepository,
	movementRepo inventory.MovementRepository,
	orderRepo order.Repository,
	trackingRepo order.TrackingRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		orderRepo:    orderRepo,
		trackingRepo: trackingRepo,
	}
}

// Execute runs the function with the repositories as-is, without a transaction
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockRepo returns the stock repository
func (s *NoOpTransactionScope) StockRepo() inventory.StockRepository {
	return s.stockRepo
}

// MovementRepo returns the ledger repository
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository {
	return s.movementRepo
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.Repository {
	return s.orderRepo
}

// TrackingRepo returns the tracking repository
func (s *NoOpTransactionScope) TrackingRepo() order.TrackingRepository {
	return s.trackingRepo
}
