package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmalink/backend/internal/domain/shared"
)

func newTestOrder(t *testing.T, kind OrderKind) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), kind, uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return o
}

func TestNewOrder_KindLifecycle(t *testing.T) {
	tests := []struct {
		kind OrderKind
		want LifecycleStatus
	}{
		{KindCart, LifecycleInProgress},
		{KindRequisition, LifecycleDraft},
		{KindPurchaseOrder, LifecyclePurchaseOrder},
		{KindPurchase, LifecycleActive},
		{KindVendorOrder, LifecycleDistributorOrder},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			o := newTestOrder(t, tt.kind)
			assert.Equal(t, tt.want, o.LifecycleStatus)
			assert.Equal(t, TrackingPending, o.TrackingStatus)
		})
	}

	_, err := NewOrder(uuid.New(), OrderKind("INVOICE"), uuid.New(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "VALIDATION_ERROR"))
}

func TestOrder_GrandTotalIdentity(t *testing.T) {
	o := newTestOrder(t, KindVendorOrder)

	require.NoError(t, o.SetLineTotals(
		decimal.NewFromFloat(1000),
		decimal.NewFromFloat(48.6),
		decimal.NewFromFloat(15),
		decimal.NewFromFloat(5),
	))
	require.NoError(t, o.ApplyAdditionalDiscountAmount(decimal.NewFromFloat(10.7)))
	require.NoError(t, o.SetAdditionalCost(decimal.NewFromFloat(30)))

	// GrandTotal = Amount - Discount + RoundDiscount + Vat + Tax
	//              - AdditionalDiscount + AdditionalCost
	footed := o.Amount.
		Sub(o.Discount).
		Add(o.RoundDiscount).
		Add(o.VatTotal).
		Add(o.TaxTotal).
		Sub(o.AdditionalDiscount).
		Add(o.AdditionalCost)
	assert.True(t, o.GrandTotal.Equal(footed), "grand total must foot exactly")

	// the grand total is rounded to the fixed scale, the remainder lives in
	// RoundDiscount
	assert.True(t, o.GrandTotal.Equal(o.GrandTotal.Round(GrandTotalScale)))
	assert.True(t, o.RoundDiscount.Abs().LessThan(decimal.NewFromInt(1)))
}

func TestOrder_ApplyAdditionalDiscount(t *testing.T) {
	o := newTestOrder(t, KindVendorOrder)
	require.NoError(t, o.SetLineTotals(
		decimal.NewFromInt(1000), decimal.NewFromInt(100), decimal.Zero, decimal.Zero))

	// percent applies against the discounted subtotal: 5% of 900 = 45
	require.NoError(t, o.ApplyAdditionalDiscountPercent(decimal.NewFromInt(5)))
	assert.True(t, o.AdditionalDiscount.Equal(decimal.NewFromInt(45)))

	// discount beyond the subtotal is rejected
	err := o.ApplyAdditionalDiscountAmount(decimal.NewFromInt(901))
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "VALIDATION_ERROR"))

	err = o.ApplyAdditionalDiscountPercent(decimal.NewFromInt(101))
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "VALIDATION_ERROR"))

	// terminal orders cannot be re-discounted
	require.NoError(t, o.Cancel())
	err = o.ApplyAdditionalDiscountAmount(decimal.NewFromInt(10))
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "TERMINAL_STATUS"))
}

func TestOrder_CloneAs(t *testing.T) {
	req := newTestOrder(t, KindRequisition)
	require.NoError(t, req.SetLineTotals(
		decimal.NewFromInt(500), decimal.NewFromInt(25), decimal.NewFromInt(10), decimal.Zero))
	req.SetTentativeDeliveryDate(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	po, err := req.CloneAs(KindPurchaseOrder)
	require.NoError(t, err)
	assert.Equal(t, KindPurchaseOrder, po.Kind)
	assert.Equal(t, LifecyclePurchaseOrder, po.LifecycleStatus)
	assert.NotEqual(t, req.ID, po.ID)
	require.NotNil(t, po.SourceOrderID)
	assert.Equal(t, req.ID, *po.SourceOrderID)
	assert.True(t, po.GrandTotal.Equal(req.GrandTotal))
	assert.Equal(t, req.TentativeDeliveryDate, po.TentativeDeliveryDate)

	purchase, err := po.CloneAs(KindPurchase)
	require.NoError(t, err)
	assert.Equal(t, LifecycleActive, purchase.LifecycleStatus)
	assert.Equal(t, po.ID, *purchase.SourceOrderID)
}

func TestOrder_Copy(t *testing.T) {
	o := newTestOrder(t, KindVendorOrder)
	require.NoError(t, o.SetLineTotals(
		decimal.NewFromInt(300), decimal.Zero, decimal.Zero, decimal.Zero))

	cp, err := o.Copy()
	require.NoError(t, err)
	require.NotNil(t, cp.CopiedFromID)
	assert.Equal(t, o.ID, *cp.CopiedFromID)
	assert.True(t, cp.GrandTotal.Equal(o.GrandTotal))

	// the original is superseded
	assert.False(t, o.IsActive())
	assert.Equal(t, LifecycleInactive, o.LifecycleStatus)

	_, err = o.Copy()
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "INVALID_STATE"))
}

func TestOrder_MarkQueueing(t *testing.T) {
	o := newTestOrder(t, KindVendorOrder)
	o.MarkQueueing()
	assert.True(t, o.IsQueueingOrder)
	assert.Equal(t, TrackingInQueue, o.TrackingStatus)
}

func TestOrder_ApplyTrackingStatus(t *testing.T) {
	o := newTestOrder(t, KindVendorOrder)

	require.NoError(t, o.ApplyTrackingStatus(TrackingAccepted))
	assert.Equal(t, TrackingAccepted, o.TrackingStatus)

	// same status is a no-op, no event
	o.ClearDomainEvents()
	require.NoError(t, o.ApplyTrackingStatus(TrackingAccepted))
	assert.Empty(t, o.GetDomainEvents())

	require.NoError(t, o.ApplyTrackingStatus(TrackingCancelled))
	assert.True(t, o.IsTerminal())

	err := o.ApplyTrackingStatus(TrackingPending)
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "TERMINAL_STATUS"))
}

func TestOrder_CancelFromOnTheWayIsInvalid(t *testing.T) {
	o := newTestOrder(t, KindVendorOrder)
	require.NoError(t, o.ApplyTrackingStatus(TrackingAccepted))
	require.NoError(t, o.ApplyTrackingStatus(TrackingReadyToDeliver))
	require.NoError(t, o.ApplyTrackingStatus(TrackingOnTheWay))

	// an order already on the way cannot be cancelled outright; it must be
	// pulled back to an earlier state first
	err := o.Cancel()
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "INVALID_STATE"))

	require.NoError(t, o.ApplyTrackingStatus(TrackingPending))
	require.NoError(t, o.Cancel())
	assert.Equal(t, TrackingCancelled, o.TrackingStatus)
}
