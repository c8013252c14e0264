package telemetry

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GormOpsMetricsProvider implements OpsMetricsProvider by querying the
// operational tables directly.
type GormOpsMetricsProvider struct {
	db *gorm.DB
}

var _ OpsMetricsProvider = (*GormOpsMetricsProvider)(nil)

// NewGormOpsMetricsProvider creates a new GormOpsMetricsProvider.
func NewGormOpsMetricsProvider(db *gorm.DB) *GormOpsMetricsProvider {
	return &GormOpsMetricsProvider{db: db}
}

// PendingOutboxCount returns the number of outbox entries awaiting delivery.
func (p *GormOpsMetricsProvider) PendingOutboxCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("outbox_entries").
		Where("status IN ?", []string{"PENDING", "FAILED"}).
		Count(&count).Error
	return count, err
}

// DueTaskCount returns the number of background tasks due for execution.
func (p *GormOpsMetricsProvider) DueTaskCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("queue_tasks").
		Where("status IN ? AND run_at <= ?", []string{"PENDING", "FAILED"}, time.Now()).
		Count(&count).Error
	return count, err
}

// OverdueCreditCount returns the number of credit entries past their term
// date with an open balance.
func (p *GormOpsMetricsProvider) OverdueCreditCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("credit_entries").
		Where("term_date IS NOT NULL AND term_date < ? AND open_balance > 0", time.Now()).
		Count(&count).Error
	return count, err
}
