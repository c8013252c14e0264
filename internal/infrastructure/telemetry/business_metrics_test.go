package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/infrastructure/telemetry"
)

type stubOpsProvider struct {
	outbox  int64
	due     int64
	overdue int64
	err     error
	calls   int
}

func (p *stubOpsProvider) PendingOutboxCount(context.Context) (int64, error) {
	p.calls++
	return p.outbox, p.err
}

func (p *stubOpsProvider) DueTaskCount(context.Context) (int64, error) {
	return p.due, p.err
}

func (p *stubOpsProvider) OverdueCreditCount(context.Context) (int64, error) {
	return p.overdue, p.err
}

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Logger: zap.NewNop(),
	})

	assert.Error(t, err)
	assert.Nil(t, bm)
}

func TestBusinessMetrics_RecordersDoNotPanic(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		bm.RecordOrderPlaced(ctx, "PURCHASE_ORDER", decimal.NewFromInt(4800))
		bm.RecordTrackingTransition(ctx, "ON_THE_WAY")
		bm.RecordStockDrift(ctx)
		bm.RecordCreditPayment(ctx)
	})
}

func TestBusinessMetrics_CollectionLoop(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	provider := &stubOpsProvider{outbox: 3, due: 1, overdue: 2}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:    meter,
		Logger:   zap.NewNop(),
		Provider: provider,
	})
	require.NoError(t, err)

	bm.StartCollection(context.Background(), 10*time.Millisecond)
	defer bm.StopCollection()

	assert.Eventually(t, func() bool {
		return provider.calls > 0
	}, time.Second, 10*time.Millisecond)
}

func TestBusinessMetrics_CollectionProviderError(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	provider := &stubOpsProvider{err: errors.New("db down")}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:    meter,
		Logger:   zap.NewNop(),
		Provider: provider,
	})
	require.NoError(t, err)

	bm.StartCollection(context.Background(), 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return provider.calls > 0
	}, time.Second, 10*time.Millisecond)

	// errors are logged, the loop keeps running
	bm.StopCollection()
}

func TestBusinessMetrics_StartStopIdempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:    meter,
		Logger:   zap.NewNop(),
		Provider: &stubOpsProvider{},
	})
	require.NoError(t, err)

	bm.StartCollection(context.Background(), time.Minute)
	bm.StartCollection(context.Background(), time.Minute)
	bm.StopCollection()
	bm.StopCollection()
}
