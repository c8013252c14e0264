package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskHandler processes one task payload. Handlers must be idempotent:
// delivery is at-least-once.
type TaskHandler func(ctx context.Context, payload []byte) error

// WorkerConfig controls the polling worker
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultWorkerConfig returns the default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval: 2 * time.Second,
		BatchSize:    20,
	}
}

// Worker polls queue_tasks for due work and dispatches to registered
// handlers. Multiple workers can poll the same table: claiming uses
// FOR UPDATE SKIP LOCKED so each task is handed to exactly one worker.
type Worker struct {
	db       *gorm.DB
	config   WorkerConfig
	logger   *zap.Logger
	handlers map[string]TaskHandler
	mu       sync.RWMutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
}

// NewWorker creates a task worker
func NewWorker(db *gorm.DB, config WorkerConfig, logger *zap.Logger) *Worker {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultWorkerConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultWorkerConfig().BatchSize
	}
	return &Worker{
		db:       db,
		config:   config,
		logger:   logger,
		handlers: make(map[string]TaskHandler),
	}
}

// RegisterHandler binds a task name to its handler. Registering twice
// for the same name replaces the previous handler.
func (w *Worker) RegisterHandler(name string, handler TaskHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[name] = handler
}

// Start launches the polling loop
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("worker already running")
	}
	w.running = true
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Info("Task worker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize))
	return nil
}

// Stop halts polling and waits for in-flight tasks to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	cancel := w.cancel
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
	w.logger.Info("Task worker stopped")
}

func (w *Worker) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ProcessDueTasks(ctx); err != nil {
				w.logger.Error("Task batch failed", zap.Error(err))
			}
		}
	}
}

// ProcessDueTasks claims one batch of due tasks and runs them
func (w *Worker) ProcessDueTasks(ctx context.Context) error {
	tasks, err := w.claim(ctx)
	if err != nil {
		return fmt.Errorf("failed to claim tasks: %w", err)
	}

	for _, task := range tasks {
		w.runTask(ctx, task)
	}
	return nil
}

// claim atomically moves a batch of due tasks to PROCESSING
func (w *Worker) claim(ctx context.Context) ([]*Task, error) {
	var tasks []*Task
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status IN ? AND run_at <= ?",
				[]TaskStatus{TaskStatusPending, TaskStatusFailed}, time.Now()).
			Order("run_at ASC").
			Limit(w.config.BatchSize).
			Find(&tasks).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}

		taskIDs := make([]any, 0, len(tasks))
		for _, task := range tasks {
			if err := task.MarkProcessing(); err != nil {
				return err
			}
			taskIDs = append(taskIDs, task.ID)
		}
		return tx.Model(&Task{}).
			Where("id IN ?", taskIDs).
			Updates(map[string]any{
				"status":     TaskStatusProcessing,
				"updated_at": time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (w *Worker) runTask(ctx context.Context, task *Task) {
	w.mu.RLock()
	handler, ok := w.handlers[task.Name]
	w.mu.RUnlock()

	if !ok {
		w.fail(ctx, task, fmt.Sprintf("no handler registered for task %s", task.Name))
		return
	}

	if err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panicked: %v", r)
			}
		}()
		return handler(ctx, task.Payload)
	}(); err != nil {
		w.fail(ctx, task, err.Error())
		return
	}

	task.MarkDone()
	if err := w.db.WithContext(ctx).Save(task).Error; err != nil {
		w.logger.Error("Failed to mark task done",
			zap.String("task_id", task.ID.String()),
			zap.String("task_name", task.Name),
			zap.Error(err))
	}
}

func (w *Worker) fail(ctx context.Context, task *Task, errMsg string) {
	task.MarkFailed(errMsg)

	if task.IsDead() {
		w.logger.Warn("Task moved to dead letter",
			zap.String("task_id", task.ID.String()),
			zap.String("task_name", task.Name),
			zap.Int("retry_count", task.RetryCount),
			zap.String("error", errMsg))
	} else {
		w.logger.Debug("Task failed, scheduled for retry",
			zap.String("task_id", task.ID.String()),
			zap.String("task_name", task.Name),
			zap.Int("retry_count", task.RetryCount),
			zap.Time("next_run_at", task.RunAt))
	}

	if err := w.db.WithContext(ctx).Save(task).Error; err != nil {
		w.logger.Error("Failed to persist task failure",
			zap.String("task_id", task.ID.String()),
			zap.Error(err))
	}
}
