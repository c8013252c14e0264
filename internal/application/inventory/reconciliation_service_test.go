package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/inventory"
)

func TestReconciliationService_Reconcile(t *testing.T) {
	stocks := newFakeStockRepo()
	moves := newFakeMovementRepo()
	cache := &capturingCache{}
	alerts := &capturingAlerts{}
	pub := &capturingPublisher{}

	scope := NewNoOpTransactionScope(stocks, moves, newFakeOrderRepo(), newFakeTrackingRepo())
	svc := NewReconciliationService(scope, cache, alerts, zap.NewNop())
	svc.SetEventPublisher(pub)

	tenantID := uuid.New()
	stock, err := inventory.NewStock(tenantID, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, stocks.Save(context.Background(), stock))

	// ledger holds 100 in, 30 out; stored on-hand lies at 80
	in, err := inventory.NewStockMovement(tenantID, stock.ID, inventory.MovementIn,
		decimal.NewFromInt(100), decimal.NewFromInt(10), inventory.MovementStatusActive)
	require.NoError(t, err)
	out, err := inventory.NewStockMovement(tenantID, stock.ID, inventory.MovementOut,
		decimal.NewFromInt(30), decimal.NewFromInt(12), inventory.MovementStatusActive)
	require.NoError(t, err)
	// order-pending entries must not count toward the invariant
	pending, err := inventory.NewStockMovement(tenantID, stock.ID, inventory.MovementIn,
		decimal.NewFromInt(999), decimal.NewFromInt(10), inventory.MovementStatusOrderPending)
	require.NoError(t, err)
	require.NoError(t, moves.Create(context.Background(), in))
	require.NoError(t, moves.Create(context.Background(), out))
	require.NoError(t, moves.Create(context.Background(), pending))
	stock.OnHand = decimal.NewFromInt(80)

	result, err := svc.Reconcile(context.Background(), stock.ID, tenantID)
	require.NoError(t, err)

	assert.True(t, result.Corrected)
	assert.True(t, result.OnHand.Equal(decimal.NewFromInt(70)))
	assert.True(t, result.Drift.Equal(decimal.NewFromInt(-10)))

	// drift is alerted, evented and the cache dropped
	assert.NotEmpty(t, alerts.subjects)
	assert.Len(t, pub.byType(inventory.EventTypeStockReconciled), 1)
	assert.Contains(t, cache.keys, StockCacheKey(stock.ID))

	// second run is a clean no-op
	alerts.subjects = nil
	result, err = svc.Reconcile(context.Background(), stock.ID, tenantID)
	require.NoError(t, err)
	assert.False(t, result.Corrected)
	assert.Empty(t, alerts.subjects)
}

func TestReconciliationService_RecomputeOrderable(t *testing.T) {
	stocks := newFakeStockRepo()
	moves := newFakeMovementRepo()

	scope := NewNoOpTransactionScope(stocks, moves, newFakeOrderRepo(), newFakeTrackingRepo())
	svc := NewReconciliationService(scope, nil, nil, zap.NewNop())

	tenantID := uuid.New()
	stock, err := inventory.NewStock(tenantID, uuid.New(), uuid.New())
	require.NoError(t, err)
	stock.EcomStock = decimal.NewFromInt(50)
	stock.Orderable = decimal.NewFromInt(999) // stale
	require.NoError(t, stocks.Save(context.Background(), stock))

	require.NoError(t, svc.RecomputeOrderable(context.Background(), stock.ID, tenantID))

	reloaded, err := stocks.FindByID(context.Background(), stock.ID)
	require.NoError(t, err)
	// fake repo reports no in-flight quantity, so orderable snaps to ecom
	assert.True(t, reloaded.Orderable.Equal(decimal.NewFromInt(50)))
}
