package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// HighlightGenerationTaskFactory creates HighlightGenerationTasks and
// restores them from persisted records.
type HighlightGenerationTaskFactory struct {
	highlights HighlightService
	generator  CardGenerator
	cards      CardCreator
	logger     *slog.Logger
}

// NewHighlightGenerationTaskFactory creates a factory for HighlightGenerationTasks.
func NewHighlightGenerationTaskFactory(
	highlights HighlightService,
	generator CardGenerator,
	cards CardCreator,
	logger *slog.Logger,
) *HighlightGenerationTaskFactory {
	return &HighlightGenerationTaskFactory{
		highlights: highlights,
		generator:  generator,
		cards:      cards,
		logger:     logger,
	}
}

// CreateTask creates a new task for the highlight.
func (f *HighlightGenerationTaskFactory) CreateTask(highlightID uuid.UUID) (Task, error) {
	return NewHighlightGenerationTask(highlightID, f.highlights, f.generator, f.cards, f.logger)
}

// Restore rebuilds a task from its record, keeping the record's ID.
func (f *HighlightGenerationTaskFactory) Restore(rec Record) (Task, error) {
	var p highlightGenerationPayload
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return newHighlightGenerationTask(rec.ID, p.HighlightID, f.highlights, f.generator, f.cards, f.logger)
}

// Register installs f as the restorer for highlight generation tasks.
func (f *HighlightGenerationTaskFactory) Register(r *Registry) {
	r.Register(TaskTypeHighlightGeneration, f.Restore)
}
