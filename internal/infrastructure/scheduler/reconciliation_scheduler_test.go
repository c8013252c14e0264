package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	invapp "github.com/pharmalink/backend/internal/application/inventory"
)

type fakeTenantProvider struct {
	tenants []uuid.UUID
	err     error
}

func (f *fakeTenantProvider) ActiveTenantIDs(context.Context) ([]uuid.UUID, error) {
	return f.tenants, f.err
}

type fakeStockProvider struct {
	stocks map[uuid.UUID][]uuid.UUID
}

func (f *fakeStockProvider) ListStockIDs(_ context.Context, tenantID uuid.UUID, limit, offset int) ([]uuid.UUID, error) {
	all := f.stocks[tenantID]
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

type fakeReconciler struct {
	mu        sync.Mutex
	calls     int
	corrected map[uuid.UUID]bool
	failOn    map[uuid.UUID]bool
}

func (f *fakeReconciler) Reconcile(_ context.Context, stockID, _ uuid.UUID) (*invapp.ReconcileResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failOn[stockID] {
		return nil, errors.New("version conflict")
	}
	return &invapp.ReconcileResult{
		StockID:   stockID,
		Drift:     decimal.Zero,
		Corrected: f.corrected[stockID],
	}, nil
}

func TestParseDailySchedule(t *testing.T) {
	tests := []struct {
		schedule string
		hour     int
		minute   int
		wantErr  bool
	}{
		{"0 3 * * *", 3, 0, false},
		{"30 23 * * *", 23, 30, false},
		{"0 0 * * *", 0, 0, false},
		{"0 3 * *", 0, 0, true},       // too few fields
		{"0 3 1 * *", 0, 0, true},     // day-of-month restriction
		{"60 3 * * *", 0, 0, true},    // minute out of range
		{"0 24 * * *", 0, 0, true},    // hour out of range
		{"x 3 * * *", 0, 0, true},     // not a number
		{"*/5 3 * * *", 0, 0, true},   // step expressions unsupported
	}

	for _, tt := range tests {
		hour, minute, err := ParseDailySchedule(tt.schedule)
		if tt.wantErr {
			assert.Error(t, err, tt.schedule)
			continue
		}
		require.NoError(t, err, tt.schedule)
		assert.Equal(t, tt.hour, hour, tt.schedule)
		assert.Equal(t, tt.minute, minute, tt.schedule)
	}
}

func TestNewReconciliationScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewReconciliationScheduler(
		Config{Schedule: "not a cron"},
		&fakeTenantProvider{}, &fakeStockProvider{}, &fakeReconciler{},
		zaptest.NewLogger(t),
	)
	assert.Error(t, err)
}

func TestRunSweep(t *testing.T) {
	tenantA := uuid.New()
	tenantB := uuid.New()
	drifted := uuid.New()
	broken := uuid.New()

	stocks := &fakeStockProvider{stocks: map[uuid.UUID][]uuid.UUID{
		tenantA: {uuid.New(), drifted, broken},
		tenantB: {uuid.New(), uuid.New()},
	}}
	reconciler := &fakeReconciler{
		corrected: map[uuid.UUID]bool{drifted: true},
		failOn:    map[uuid.UUID]bool{broken: true},
	}

	s, err := NewReconciliationScheduler(
		Config{Schedule: "0 3 * * *", BatchSize: 2},
		&fakeTenantProvider{tenants: []uuid.UUID{tenantA, tenantB}},
		stocks,
		reconciler,
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)

	s.RunSweep(context.Background())

	assert.Equal(t, 5, reconciler.calls)
}

func TestRunSweep_TenantProviderError(t *testing.T) {
	reconciler := &fakeReconciler{}
	s, err := NewReconciliationScheduler(
		Config{},
		&fakeTenantProvider{err: errors.New("db down")},
		&fakeStockProvider{},
		reconciler,
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)

	s.RunSweep(context.Background())

	assert.Equal(t, 0, reconciler.calls)
}

func TestSchedulerStartStop(t *testing.T) {
	s, err := NewReconciliationScheduler(
		Config{CheckInterval: 10 * time.Millisecond},
		&fakeTenantProvider{},
		&fakeStockProvider{},
		&fakeReconciler{},
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	// second start is a no-op
	require.NoError(t, s.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	require.NoError(t, s.Stop(stopCtx))
}
