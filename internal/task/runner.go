package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/redact"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks.
	// Zero means 5 minutes.
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner persists submitted tasks and executes them on a fixed pool of workers.
type TaskRunner struct {
	store      TaskStore
	registry   *Registry
	queue      *TaskQueue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)
}

// NewTaskRunner creates a runner. registry restores tasks found in the
// store at start-up and by the stuck task monitor; it may be nil when
// nothing needs restoring.
func NewTaskRunner(store TaskStore, registry *Registry, config TaskRunnerConfig, log *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "task_runner"))

	ctx, cancel := context.WithCancel(context.Background())
	r := &TaskRunner{
		store:      store,
		registry:   registry,
		queue:      NewTaskQueue(config.QueueSize, log),
		ctx:        logger.WithContext(ctx, log),
		cancelFunc: cancel,
		config:     config,
		logger:     log,
	}
	r.errHandler = func(task Task, err error) {
		r.logger.Error("task execution failed",
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.String("error", redact.Error(err)))
	}
	return r
}

// SetErrorHandler replaces the function called after a task fails.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit persists task and queues it. A full queue is reported as an
// error but the task stays pending in the store, and Recover queues it on
// the next start.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to queue task: %w", err)
	}
	return nil
}

// Start recovers unfinished tasks and launches the workers and the stuck
// task monitor.
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	r.logger.Info("task runner started", slog.Int("workers", r.config.WorkerCount))
	return nil
}

// Stop cancels running tasks and waits for the workers to exit. It is
// safe to call more than once.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.wg.Wait()
		r.queue.Close()
		r.logger.Info("task runner stopped")
	})
}

// Recover queues every pending task and resets tasks left processing by a
// previous run back to pending before queueing them.
func (r *TaskRunner) Recover() error {
	ctx := r.ctx

	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}
	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		slog.Int("pending_count", len(pending)),
		slog.Int("processing_count", len(processing)))

	for _, rec := range pending {
		r.requeue(ctx, rec, false, "")
	}
	for _, rec := range processing {
		r.requeue(ctx, rec, true, "Reset after recovery")
	}
	return nil
}

// requeue restores rec and places it on the queue. A record that cannot be
// restored is marked failed so it is not retried forever.
func (r *TaskRunner) requeue(ctx context.Context, rec Record, reset bool, reason string) {
	log := r.logger.With(
		slog.String("task_id", rec.ID.String()),
		slog.String("task_type", rec.Type))

	t, err := r.registry.Restore(rec)
	if err != nil {
		log.Error("failed to restore task", slog.String("error", err.Error()))
		if uerr := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusFailed, err.Error()); uerr != nil {
			log.Error("failed to mark unrestorable task failed", slog.String("error", uerr.Error()))
		}
		return
	}

	if reset {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending, reason); err != nil {
			log.Error("failed to reset task status", slog.String("error", err.Error()))
			return
		}
	}

	if err := r.queue.Enqueue(t); err != nil {
		log.Error("failed to requeue task", slog.String("error", err.Error()))
		return
	}
	log.Debug("task requeued")
}

func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return

		case task, ok := <-r.queue.Channel():
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", slog.Int("worker_id", id))
				return
			}
			r.processTask(task, id)
		}
	}
}

func (r *TaskRunner) processTask(task Task, workerID int) {
	log := r.logger.With(
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID),
	)
	ctx := logger.WithContext(r.ctx, log)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to update task status to processing", slog.String("error", err.Error()))
		return
	}

	log.Info("processing task")
	start := time.Now()

	err := r.execute(ctx, task)
	if err != nil {
		if errors.Is(err, context.Canceled) && r.ctx.Err() != nil {
			// Shutting down; leave the task processing for the next start.
			log.Warn("task interrupted by shutdown")
			return
		}
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, redact.Error(err)); updateErr != nil {
			log.Error("failed to update task status to failed", slog.String("error", updateErr.Error()))
		}
		r.errHandler(task, err)
		return
	}

	log.Info("task completed successfully", slog.Duration("duration", time.Since(start)))
	if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
		log.Error("failed to update task status to completed", slog.String("error", updateErr.Error()))
	}
}

// execute runs the task and converts a panic into an error.
func (r *TaskRunner) execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return task.Execute(ctx)
}

// stuckTaskMonitor periodically resets tasks that have been processing
// for longer than StuckTaskAge.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			r.resetStuckTasks()
		}
	}
}

func (r *TaskRunner) resetStuckTasks() {
	stuck, err := r.store.GetProcessingTasks(r.ctx, r.config.StuckTaskAge)
	if err != nil {
		r.logger.Error("failed to check for stuck tasks", slog.String("error", err.Error()))
		return
	}
	if len(stuck) == 0 {
		return
	}

	r.logger.Info("found stuck tasks", slog.Int("count", len(stuck)))
	for _, rec := range stuck {
		r.requeue(r.ctx, rec, true, "Reset after being stuck in processing state")
	}
}
