// Package scheduler runs the nightly stock reconciliation sweep.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	invapp "github.com/pharmalink/backend/internal/application/inventory"
)

// TenantProvider lists the tenants to sweep
type TenantProvider interface {
	ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StockProvider pages through the stock rows of one tenant
type StockProvider interface {
	ListStockIDs(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]uuid.UUID, error)
}

// Reconciler realigns one stock row with its ledger
type Reconciler interface {
	Reconcile(ctx context.Context, stockID, tenantID uuid.UUID) (*invapp.ReconcileResult, error)
}

// Config holds scheduler configuration
type Config struct {
	// Schedule is a daily five-field cron expression; only expressions of
	// the form "M H * * *" are supported
	Schedule string
	// CheckInterval is how often the loop checks whether it is time to run
	CheckInterval time.Duration
	// BatchSize is the page size for the per-tenant stock sweep
	BatchSize int
}

// DefaultConfig returns the default scheduler configuration: 3am daily
func DefaultConfig() Config {
	return Config{
		Schedule:      "0 3 * * *",
		CheckInterval: time.Minute,
		BatchSize:     200,
	}
}

// ParseDailySchedule extracts hour and minute from a daily cron
// expression of the form "M H * * *".
func ParseDailySchedule(schedule string) (hour, minute int, err error) {
	fields := strings.Fields(schedule)
	if len(fields) != 5 {
		return 0, 0, fmt.Errorf("invalid cron expression %q: expected 5 fields", schedule)
	}
	for _, f := range fields[2:] {
		if f != "*" {
			return 0, 0, fmt.Errorf("unsupported cron expression %q: only daily schedules are supported", schedule)
		}
	}

	minute, err = strconv.Atoi(fields[0])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute field %q", fields[0])
	}
	hour, err = strconv.Atoi(fields[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour field %q", fields[1])
	}
	return hour, minute, nil
}

// ReconciliationScheduler triggers the reconciliation sweep once a day.
// The sweep itself is idempotent, so a missed or doubled run is harmless.
type ReconciliationScheduler struct {
	config     Config
	hour       int
	minute     int
	tenants    TenantProvider
	stocks     StockProvider
	reconciler Reconciler
	logger     *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewReconciliationScheduler creates a new scheduler
func NewReconciliationScheduler(
	config Config,
	tenants TenantProvider,
	stocks StockProvider,
	reconciler Reconciler,
	logger *zap.Logger,
) (*ReconciliationScheduler, error) {
	if config.Schedule == "" {
		config.Schedule = DefaultConfig().Schedule
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultConfig().CheckInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}

	hour, minute, err := ParseDailySchedule(config.Schedule)
	if err != nil {
		return nil, err
	}

	return &ReconciliationScheduler{
		config:     config,
		hour:       hour,
		minute:     minute,
		tenants:    tenants,
		stocks:     stocks,
		reconciler: reconciler,
		logger:     logger,
	}, nil
}

// Start launches the trigger loop
func (s *ReconciliationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Reconciliation scheduler started",
		zap.Int("hour", s.hour),
		zap.Int("minute", s.minute),
		zap.Duration("check_interval", s.config.CheckInterval),
	)
	return nil
}

// Stop halts the trigger loop and waits for an in-flight sweep
func (s *ReconciliationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reconciliation scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ReconciliationScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndTrigger(ctx)
		}
	}
}

func (s *ReconciliationScheduler) checkAndTrigger(ctx context.Context) {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	s.mu.Lock()
	alreadyRan := s.lastRunDate == currentDate
	s.mu.Unlock()
	if alreadyRan {
		return
	}

	if now.Hour() != s.hour || now.Minute() != s.minute {
		return
	}

	s.mu.Lock()
	s.lastRunDate = currentDate
	s.mu.Unlock()

	s.logger.Info("Triggering nightly stock reconciliation")
	s.RunSweep(ctx)
}

// RunSweep reconciles every stock of every active tenant. Also the entry
// point for manually triggered runs.
func (s *ReconciliationScheduler) RunSweep(ctx context.Context) {
	started := time.Now()

	tenantIDs, err := s.tenants.ActiveTenantIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list tenants for reconciliation", zap.Error(err))
		return
	}

	var swept, corrected, failed int
	for _, tenantID := range tenantIDs {
		ts, tc, tf := s.sweepTenant(ctx, tenantID)
		swept += ts
		corrected += tc
		failed += tf

		if ctx.Err() != nil {
			return
		}
	}

	s.logger.Info("Nightly stock reconciliation finished",
		zap.Int("tenants", len(tenantIDs)),
		zap.Int("stocks_swept", swept),
		zap.Int("corrected", corrected),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(started)),
	)
}

func (s *ReconciliationScheduler) sweepTenant(ctx context.Context, tenantID uuid.UUID) (swept, corrected, failed int) {
	for offset := 0; ; offset += s.config.BatchSize {
		stockIDs, err := s.stocks.ListStockIDs(ctx, tenantID, s.config.BatchSize, offset)
		if err != nil {
			s.logger.Error("Failed to page stocks for reconciliation",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
			failed++
			return
		}
		if len(stockIDs) == 0 {
			return
		}

		for _, stockID := range stockIDs {
			result, err := s.reconciler.Reconcile(ctx, stockID, tenantID)
			if err != nil {
				s.logger.Error("Stock reconciliation failed",
					zap.String("stock_id", stockID.String()),
					zap.String("tenant_id", tenantID.String()),
					zap.Error(err))
				failed++
				continue
			}
			swept++
			if result.Corrected {
				corrected++
			}
		}

		if len(stockIDs) < s.config.BatchSize {
			return
		}
	}
}
