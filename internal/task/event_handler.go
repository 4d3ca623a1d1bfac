package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/events"
)

// HighlightTaskCreator creates a generation task for a highlight.
type HighlightTaskCreator interface {
	CreateTask(highlightID uuid.UUID) (Task, error)
}

// Submitter accepts tasks for background execution.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler turns highlight generation events into tasks
// and submits them to the runner.
type TaskFactoryEventHandler struct {
	factory HighlightTaskCreator
	runner  Submitter
	logger  *slog.Logger
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

// NewTaskFactoryEventHandler creates the handler.
func NewTaskFactoryEventHandler(
	factory HighlightTaskCreator,
	runner Submitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With(slog.String("component", "task_factory_event_handler")),
	}
}

// HandleEvent ignores events of other types.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	log := h.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))

	if event.Type != TaskTypeHighlightGeneration {
		log.Debug("ignoring event with unsupported type")
		return nil
	}

	var payload struct {
		HighlightID string `json:"highlight_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		log.Error("failed to unmarshal payload", slog.String("error", err.Error()))
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	highlightID, err := uuid.Parse(payload.HighlightID)
	if err != nil {
		log.Error("invalid highlight ID", slog.String("highlight_id", payload.HighlightID))
		return fmt.Errorf("invalid highlight ID: %w", err)
	}

	t, err := h.factory.CreateTask(highlightID)
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, t); err != nil {
		log.Error("failed to submit task",
			slog.String("task_id", t.ID().String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to submit task: %w", err)
	}

	log.Info("task created and submitted",
		slog.String("task_id", t.ID().String()),
		slog.String("highlight_id", highlightID.String()))
	return nil
}
