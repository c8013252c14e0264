package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks order flow, ledger health, and background
// processing depth.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counters
	ordersPlacedTotal        *Counter
	orderAmountTotal         *Counter
	trackingTransitionsTotal *Counter
	stockDriftTotal          *Counter
	creditPaymentsTotal      *Counter

	// Gauges fed by the collection loop
	outboxPendingGauge *Gauge
	queueDepthGauge    *Gauge
	creditOverdueGauge *Gauge

	provider OpsMetricsProvider

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// OpsMetricsProvider supplies point-in-time operational counts for the
// gauge collection loop.
type OpsMetricsProvider interface {
	PendingOutboxCount(ctx context.Context) (int64, error)
	DueTaskCount(ctx context.Context) (int64, error)
	OverdueCreditCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig configures BusinessMetrics.
type BusinessMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider OpsMetricsProvider // optional; without it the gauges stay silent
	// CollectionInterval defines how often gauges are refreshed (default: 30s)
	CollectionInterval time.Duration
}

// NewBusinessMetrics creates the business metric instruments.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, fmt.Errorf("meter is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:    cfg.Meter,
		logger:   cfg.Logger,
		provider: cfg.Provider,
	}

	var err error
	if bm.ordersPlacedTotal, err = NewCounter(cfg.Meter,
		"orders_placed_total", "Total orders placed", "{order}"); err != nil {
		return nil, err
	}
	if bm.orderAmountTotal, err = NewCounter(cfg.Meter,
		"order_amount_total", "Total grand total of placed orders", "{currency_unit}"); err != nil {
		return nil, err
	}
	if bm.trackingTransitionsTotal, err = NewCounter(cfg.Meter,
		"order_tracking_transitions_total", "Total order tracking transitions", "{transition}"); err != nil {
		return nil, err
	}
	if bm.stockDriftTotal, err = NewCounter(cfg.Meter,
		"stock_drift_corrections_total", "Total reconciliation corrections applied to stock", "{correction}"); err != nil {
		return nil, err
	}
	if bm.creditPaymentsTotal, err = NewCounter(cfg.Meter,
		"credit_payments_total", "Total credit payments recorded", "{payment}"); err != nil {
		return nil, err
	}

	if bm.outboxPendingGauge, err = NewGauge(cfg.Meter,
		"outbox_pending_entries", "Outbox entries awaiting delivery", "{entry}"); err != nil {
		return nil, err
	}
	if bm.queueDepthGauge, err = NewGauge(cfg.Meter,
		"queue_due_tasks", "Background tasks due for execution", "{task}"); err != nil {
		return nil, err
	}
	if bm.creditOverdueGauge, err = NewGauge(cfg.Meter,
		"credit_overdue_entries", "Credit entries past their term date", "{entry}"); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordOrderPlaced records a placed order and its grand total.
// Amounts are recorded in whole currency units.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, kind string, grandTotal decimal.Decimal) {
	bm.ordersPlacedTotal.Inc(ctx, AttrOrderKind.String(kind))
	bm.orderAmountTotal.Add(ctx, grandTotal.IntPart(), AttrOrderKind.String(kind))
}

// RecordTrackingTransition records one tracking state change.
func (bm *BusinessMetrics) RecordTrackingTransition(ctx context.Context, toStatus string) {
	bm.trackingTransitionsTotal.Inc(ctx, AttrTrackingStatus.String(toStatus))
}

// RecordStockDrift records one reconciliation correction.
func (bm *BusinessMetrics) RecordStockDrift(ctx context.Context) {
	bm.stockDriftTotal.Inc(ctx)
}

// RecordCreditPayment records one credit payment.
func (bm *BusinessMetrics) RecordCreditPayment(ctx context.Context) {
	bm.creditPaymentsTotal.Inc(ctx)
}

// StartCollection launches the periodic gauge refresh. A no-op when no
// provider is configured.
func (bm *BusinessMetrics) StartCollection(ctx context.Context, interval time.Duration) {
	if bm.provider == nil {
		return
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	bm.mu.Lock()
	if bm.started {
		bm.mu.Unlock()
		return
	}
	bm.started = true
	ctx, bm.cancel = context.WithCancel(ctx)
	bm.mu.Unlock()

	bm.wg.Add(1)
	go func() {
		defer bm.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				bm.collect(ctx)
			}
		}
	}()
}

// StopCollection halts the gauge refresh loop.
func (bm *BusinessMetrics) StopCollection() {
	bm.mu.Lock()
	if !bm.started {
		bm.mu.Unlock()
		return
	}
	bm.started = false
	cancel := bm.cancel
	bm.mu.Unlock()

	cancel()
	bm.wg.Wait()
}

func (bm *BusinessMetrics) collect(ctx context.Context) {
	if count, err := bm.provider.PendingOutboxCount(ctx); err != nil {
		bm.logger.Warn("Failed to collect outbox depth", zap.Error(err))
	} else {
		bm.outboxPendingGauge.Record(ctx, count)
	}

	if count, err := bm.provider.DueTaskCount(ctx); err != nil {
		bm.logger.Warn("Failed to collect queue depth", zap.Error(err))
	} else {
		bm.queueDepthGauge.Record(ctx, count)
	}

	if count, err := bm.provider.OverdueCreditCount(ctx); err != nil {
		bm.logger.Warn("Failed to collect overdue credit count", zap.Error(err))
	} else {
		bm.creditOverdueGauge.Record(ctx, count)
	}
}
