package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypeHighlightGeneration generates flashcards from a highlight.
const TaskTypeHighlightGeneration = "highlight_generation"

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as JSON
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// Record is a task as persisted by a TaskStore. It carries no behavior;
// a Registry turns it back into a Task.
type Record struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       TaskStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TaskStore persists tasks and their status transitions.
type TaskStore interface {
	// SaveTask persists a new task
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus records a status transition
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks returns every pending task, oldest first
	GetPendingTasks(ctx context.Context) ([]Record, error)

	// GetProcessingTasks returns processing tasks. If olderThan is non-zero,
	// only tasks last updated longer ago than that are returned.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error)
}
