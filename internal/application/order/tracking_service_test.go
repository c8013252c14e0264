package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmalink/backend/internal/domain/inventory"
	"github.com/pharmalink/backend/internal/domain/order"
	"github.com/pharmalink/backend/internal/domain/shared"
)

func (f *orderFixture) transition(t *testing.T, orderID uuid.UUID, status order.TrackingStatus) *OrderView {
	t.Helper()
	view, err := f.tracking.Transition(context.Background(), TransitionCommand{
		OrderID:  orderID,
		TenantID: f.tenantID,
		Status:   status,
	})
	require.NoError(t, err)
	return view
}

func TestTrackingService_DispatchAndReversal(t *testing.T) {
	f := newOrderFixture(t)
	productID := uuid.New()
	stock := f.seedStock(t, productID, 100)

	placed, err := f.service.PlaceOrder(context.Background(), f.placeCmd(productID, 30))
	require.NoError(t, err)

	reloaded, _ := f.stocks.FindByID(context.Background(), stock.ID)
	require.True(t, reloaded.Orderable.Equal(decimal.NewFromInt(70)))

	f.transition(t, placed.OrderID, order.TrackingAccepted)
	f.transition(t, placed.OrderID, order.TrackingReadyToDeliver)
	f.transition(t, placed.OrderID, order.TrackingOnTheWay)

	// first dispatch decrements ecom and orderable by the full quantity
	reloaded, _ = f.stocks.FindByID(context.Background(), stock.ID)
	assert.True(t, reloaded.Orderable.Equal(decimal.NewFromInt(40)), "orderable=%s", reloaded.Orderable)
	assert.True(t, reloaded.EcomStock.Equal(decimal.NewFromInt(70)))

	// pulling the order back restores both
	f.transition(t, placed.OrderID, order.TrackingPending)
	reloaded, _ = f.stocks.FindByID(context.Background(), stock.ID)
	assert.True(t, reloaded.Orderable.Equal(decimal.NewFromInt(70)), "orderable=%s", reloaded.Orderable)
	assert.True(t, reloaded.EcomStock.Equal(decimal.NewFromInt(100)))
}

func TestTrackingService_CancelReleasesReservation(t *testing.T) {
	f := newOrderFixture(t)
	productID := uuid.New()
	stock := f.seedStock(t, productID, 100)

	placed, err := f.service.PlaceOrder(context.Background(), f.placeCmd(productID, 30))
	require.NoError(t, err)

	reloaded, _ := f.stocks.FindByID(context.Background(), stock.ID)
	require.True(t, reloaded.Orderable.Equal(decimal.NewFromInt(70)))

	f.transition(t, placed.OrderID, order.TrackingCancelled)

	// a cancelled order no longer counts as in flight, so the rebuild
	// returns orderable to the ecom quantity
	reloaded, _ = f.stocks.FindByID(context.Background(), stock.ID)
	assert.True(t, reloaded.Orderable.Equal(decimal.NewFromInt(100)), "orderable=%s", reloaded.Orderable)
	assert.True(t, reloaded.OnHand.Equal(decimal.NewFromInt(100)))
	assert.True(t, reloaded.EcomStock.Equal(decimal.NewFromInt(100)))
}

func TestTrackingService_RebuildSkipsAcceptedQueueingOrders(t *testing.T) {
	f := newOrderFixture(t)
	productID := uuid.New()
	stock := f.seedStock(t, productID, 100)

	placed, err := f.service.PlaceOrder(context.Background(), f.placeCmd(productID, 30))
	require.NoError(t, err)

	// a queueing order against the same stock, accepted for the next day
	queued, err := order.NewOrder(f.tenantID, order.KindVendorOrder, uuid.New(), uuid.New(), f.storeID)
	require.NoError(t, err)
	queued.MarkQueueing()
	require.NoError(t, f.orders.Save(context.Background(), queued))
	line, err := inventory.NewStockMovement(f.tenantID, stock.ID, inventory.MovementOut,
		decimal.NewFromInt(20), decimal.NewFromInt(10), inventory.MovementStatusDistributorOrder)
	require.NoError(t, err)
	line.WithOrder(queued.ID)
	require.NoError(t, f.moves.Create(context.Background(), line))
	f.transition(t, queued.ID, order.TrackingAccepted)

	rebuild := func() *inventory.Stock {
		require.NoError(t, f.tracking.SyncStock(context.Background(), StockSyncPayload{
			OrderID:  placed.OrderID,
			TenantID: f.tenantID,
			Status:   order.TrackingPending.String(),
			Previous: order.TrackingInQueue.String(),
		}))
		reloaded, err := f.stocks.FindByID(context.Background(), stock.ID)
		require.NoError(t, err)
		return reloaded
	}

	// only the regular pending order counts: an accepted queueing order
	// holds no reservation yet
	reloaded := rebuild()
	assert.True(t, reloaded.Orderable.Equal(decimal.NewFromInt(70)), "orderable=%s", reloaded.Orderable)

	// once ready to deliver the queued quantity is reserved again
	f.transition(t, queued.ID, order.TrackingReadyToDeliver)
	reloaded = rebuild()
	assert.True(t, reloaded.Orderable.Equal(decimal.NewFromInt(50)), "orderable=%s", reloaded.Orderable)
}

func TestTrackingService_TerminalSideEffects(t *testing.T) {
	f := newOrderFixture(t)
	productID := uuid.New()
	f.seedStock(t, productID, 100)

	placed, err := f.service.PlaceOrder(context.Background(), f.placeCmd(productID, 30))
	require.NoError(t, err)

	f.transition(t, placed.OrderID, order.TrackingOnTheWay)
	view := f.transition(t, placed.OrderID, order.TrackingDelivered)
	assert.Equal(t, order.TrackingDelivered.String(), view.TrackingStatus)

	// profit recompute was queued and the order cache dropped
	assert.Contains(t, f.queue.tasks, TaskRecomputeProfit)
	assert.Contains(t, f.cache.keys, OrderCacheKey(placed.OrderID))
	// the parties were notified at every hop
	assert.Contains(t, f.notify.statuses, order.TrackingOnTheWay.String())
	assert.Contains(t, f.notify.statuses, order.TrackingDelivered.String())
}

func TestTrackingService_InvalidTransitions(t *testing.T) {
	f := newOrderFixture(t)
	productID := uuid.New()
	f.seedStock(t, productID, 100)

	placed, err := f.service.PlaceOrder(context.Background(), f.placeCmd(productID, 30))
	require.NoError(t, err)

	// delivery before dispatch
	_, err = f.tracking.Transition(context.Background(), TransitionCommand{
		OrderID:  placed.OrderID,
		TenantID: f.tenantID,
		Status:   order.TrackingDelivered,
	})
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "INVALID_STATE"))

	// cancel straight from on the way
	f.transition(t, placed.OrderID, order.TrackingOnTheWay)
	_, err = f.tracking.Transition(context.Background(), TransitionCommand{
		OrderID:  placed.OrderID,
		TenantID: f.tenantID,
		Status:   order.TrackingCancelled,
	})
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "INVALID_STATE"))

	// nothing follows a terminal status
	f.transition(t, placed.OrderID, order.TrackingDelivered)
	_, err = f.tracking.Transition(context.Background(), TransitionCommand{
		OrderID:  placed.OrderID,
		TenantID: f.tenantID,
		Status:   order.TrackingPending,
	})
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "TERMINAL_STATUS"))
}

func TestTrackingService_SyncStockIdempotence(t *testing.T) {
	f := newOrderFixture(t)
	productID := uuid.New()
	stock := f.seedStock(t, productID, 100)

	placed, err := f.service.PlaceOrder(context.Background(), f.placeCmd(productID, 30))
	require.NoError(t, err)
	f.transition(t, placed.OrderID, order.TrackingOnTheWay)

	reloaded, _ := f.stocks.FindByID(context.Background(), stock.ID)
	require.True(t, reloaded.Orderable.Equal(decimal.NewFromInt(40)))

	// a queue redelivery of the same dispatch sync applies nothing new:
	// every line already carries the on-the-way status
	err = f.tracking.SyncStock(context.Background(), StockSyncPayload{
		OrderID:  placed.OrderID,
		TenantID: f.tenantID,
		Status:   order.TrackingOnTheWay.String(),
		Previous: order.TrackingReadyToDeliver.String(),
	})
	require.NoError(t, err)

	reloaded, _ = f.stocks.FindByID(context.Background(), stock.ID)
	assert.True(t, reloaded.Orderable.Equal(decimal.NewFromInt(40)))
	assert.True(t, reloaded.EcomStock.Equal(decimal.NewFromInt(70)))
}
