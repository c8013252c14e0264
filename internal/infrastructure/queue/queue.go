package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	invapp "github.com/pharmalink/backend/internal/application/inventory"
)

// GormTaskQueue persists background tasks in the primary database so
// enqueueing can share a transaction boundary with the triggering write.
type GormTaskQueue struct {
	db *gorm.DB
}

var _ invapp.TaskEnqueuer = (*GormTaskQueue)(nil)

// NewGormTaskQueue creates a database-backed task queue
func NewGormTaskQueue(db *gorm.DB) *GormTaskQueue {
	return &GormTaskQueue{db: db}
}

// Enqueue stores a task due after countdown
func (q *GormTaskQueue) Enqueue(ctx context.Context, taskName string, payload any, countdown time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for task %s: %w", taskName, err)
	}

	task := NewTask(taskName, data, countdown)
	if err := q.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to enqueue task %s: %w", taskName, err)
	}
	return nil
}
