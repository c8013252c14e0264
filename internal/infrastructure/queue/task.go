package queue

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the delivery state of a queued task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusDead       TaskStatus = "DEAD"
)

// Default retry configuration. Delivery is at-least-once: a handler
// that crashed mid-run is retried, so handlers must be idempotent.
const (
	DefaultMaxRetries  = 10
	DefaultBaseBackoff = 5 * time.Second
	MaxBackoff         = 5 * time.Minute
)

// Task is one durable unit of background work
type Task struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name       string     `gorm:"type:varchar(100);not null;index"`
	Payload    []byte     `gorm:"type:jsonb;not null"`
	Status     TaskStatus `gorm:"type:varchar(20);not null;index:idx_queue_tasks_due,priority:1"`
	RunAt      time.Time  `gorm:"type:timestamptz;not null;index:idx_queue_tasks_due,priority:2"`
	RetryCount int        `gorm:"not null;default:0"`
	MaxRetries int        `gorm:"not null;default:10"`
	LastError  string     `gorm:"type:text"`
	CreatedAt  time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt  time.Time  `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (Task) TableName() string {
	return "queue_tasks"
}

// NewTask creates a pending task due at now+countdown
func NewTask(name string, payload []byte, countdown time.Duration) *Task {
	now := time.Now()
	return &Task{
		ID:         uuid.New(),
		Name:       name,
		Payload:    payload,
		Status:     TaskStatusPending,
		RunAt:      now.Add(countdown),
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MarkProcessing claims the task for a worker
func (t *Task) MarkProcessing() error {
	if t.Status != TaskStatusPending && t.Status != TaskStatusFailed {
		return errors.New("can only claim pending or failed tasks")
	}
	t.Status = TaskStatusProcessing
	t.UpdatedAt = time.Now()
	return nil
}

// MarkDone marks the task as completed
func (t *Task) MarkDone() {
	t.Status = TaskStatusDone
	t.UpdatedAt = time.Now()
}

// MarkFailed records the failure and schedules the next attempt.
// Backoff doubles per attempt and is capped at MaxBackoff; after
// MaxRetries the task parks as DEAD for operator review.
func (t *Task) MarkFailed(errMsg string) {
	t.RetryCount++
	t.LastError = errMsg
	t.UpdatedAt = time.Now()

	if t.RetryCount >= t.MaxRetries {
		t.Status = TaskStatusDead
		return
	}

	t.Status = TaskStatusFailed
	backoff := DefaultBaseBackoff * time.Duration(1<<uint(t.RetryCount-1))
	if backoff > MaxBackoff {
		backoff = MaxBackoff
	}
	t.RunAt = time.Now().Add(backoff)
}

// IsDead reports whether the task exhausted its retries
func (t *Task) IsDead() bool {
	return t.Status == TaskStatusDead
}
