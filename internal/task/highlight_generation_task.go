package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/generation"
)

// Common errors
var (
	ErrNilHighlightService = errors.New("highlight service cannot be nil")
	ErrNilGenerator        = errors.New("generator cannot be nil")
	ErrNilCardCreator      = errors.New("card creator cannot be nil")
	ErrNilLogger           = errors.New("logger cannot be nil")
	ErrEmptyHighlightID    = errors.New("highlight ID cannot be empty")
)

// HighlightService is the slice of the highlight service the task needs.
type HighlightService interface {
	GetHighlight(ctx context.Context, id uuid.UUID) (*domain.Highlight, error)
	UpdateHighlightStatus(
		ctx context.Context,
		id uuid.UUID,
		status domain.HighlightStatus,
		cardCount int,
		errMsg string,
	) error
}

// CardGenerator produces cards from text.
type CardGenerator interface {
	GenerateCards(ctx context.Context, text string, count int) ([]generation.GeneratedCard, error)
}

// CardCreator saves generated cards into a user's deck. It returns how many
// were created; cards that could not be saved are reported in failed.
type CardCreator interface {
	CreateGeneratedCards(
		ctx context.Context,
		userID uuid.UUID,
		deckID int64,
		cards []generation.GeneratedCard,
	) (created int, failed []error, err error)
}

type highlightGenerationPayload struct {
	HighlightID uuid.UUID `json:"highlight_id"`
}

// HighlightGenerationTask turns a highlight into flashcards in the
// highlight's deck and records the outcome on the highlight.
type HighlightGenerationTask struct {
	id          uuid.UUID
	highlightID uuid.UUID
	highlights  HighlightService
	generator   CardGenerator
	cards       CardCreator
	logger      *slog.Logger
	status      TaskStatus
}

// NewHighlightGenerationTask creates a pending task with a fresh ID.
func NewHighlightGenerationTask(
	highlightID uuid.UUID,
	highlights HighlightService,
	generator CardGenerator,
	cards CardCreator,
	logger *slog.Logger,
) (*HighlightGenerationTask, error) {
	return newHighlightGenerationTask(uuid.New(), highlightID, highlights, generator, cards, logger)
}

func newHighlightGenerationTask(
	id, highlightID uuid.UUID,
	highlights HighlightService,
	generator CardGenerator,
	cards CardCreator,
	logger *slog.Logger,
) (*HighlightGenerationTask, error) {
	switch {
	case highlights == nil:
		return nil, ErrNilHighlightService
	case generator == nil:
		return nil, ErrNilGenerator
	case cards == nil:
		return nil, ErrNilCardCreator
	case logger == nil:
		return nil, ErrNilLogger
	case highlightID == uuid.Nil:
		return nil, ErrEmptyHighlightID
	}

	return &HighlightGenerationTask{
		id:          id,
		highlightID: highlightID,
		highlights:  highlights,
		generator:   generator,
		cards:       cards,
		logger: logger.With(
			slog.String("task_type", TaskTypeHighlightGeneration),
			slog.String("highlight_id", highlightID.String())),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *HighlightGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns TaskTypeHighlightGeneration.
func (t *HighlightGenerationTask) Type() string {
	return TaskTypeHighlightGeneration
}

// HighlightID returns the highlight being processed.
func (t *HighlightGenerationTask) HighlightID() uuid.UUID {
	return t.highlightID
}

// Payload returns {"highlight_id": ...}.
func (t *HighlightGenerationTask) Payload() []byte {
	data, err := json.Marshal(highlightGenerationPayload{HighlightID: t.highlightID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", slog.String("error", err.Error()))
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *HighlightGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute generates cards for the highlight and saves them. The highlight
// ends completed when every card was saved, completed_with_errors when
// some were, and failed otherwise. A highlight that is already final is
// left untouched.
func (t *HighlightGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting highlight generation task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	h, err := t.highlights.GetHighlight(ctx, t.highlightID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve highlight", slog.String("error", err.Error()))
		return fmt.Errorf("failed to retrieve highlight: %w", err)
	}
	if h.IsFinal() {
		t.status = TaskStatusCompleted
		t.logger.Info("highlight already processed", slog.String("status", string(h.Status)))
		return nil
	}

	if err := t.highlights.UpdateHighlightStatus(ctx, h.ID, domain.HighlightStatusProcessing, 0, ""); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to update highlight status to processing", slog.String("error", err.Error()))
		return fmt.Errorf("failed to update highlight status to processing: %w", err)
	}

	generated, err := t.generator.GenerateCards(ctx, h.Text, generation.ClampCount(h.Requested))
	if err != nil {
		return t.fail(ctx, 0, "failed to generate cards", err)
	}
	t.logger.Info("cards generated", slog.Int("count", len(generated)))

	created, failed, err := t.cards.CreateGeneratedCards(ctx, h.UserID, h.DeckID, generated)
	if err != nil {
		return t.fail(ctx, created, "failed to save generated cards", err)
	}

	status := domain.HighlightStatusCompleted
	msg := ""
	if len(failed) > 0 {
		msg = fmt.Sprintf("%d of %d cards could not be saved: %v", len(failed), len(generated), failed[0])
		if created == 0 {
			return t.fail(ctx, 0, "no generated card could be saved", errors.Join(failed...))
		}
		status = domain.HighlightStatusCompletedWithErrors
	}
	if len(generated) == 0 {
		t.logger.Warn("highlight processing completed but no cards were generated")
	}

	if err := t.highlights.UpdateHighlightStatus(ctx, h.ID, status, created, msg); err != nil {
		t.logger.Error("failed to update highlight final status, but cards were saved",
			slog.String("error", err.Error()),
			slog.Int("cards_created", created))
	}

	t.status = TaskStatusCompleted
	t.logger.Info("highlight generation task completed",
		slog.Int("cards_created", created),
		slog.Int("cards_failed", len(failed)))
	return nil
}

func (t *HighlightGenerationTask) fail(ctx context.Context, created int, msg string, err error) error {
	t.status = TaskStatusFailed
	t.logger.Error(msg, slog.String("error", err.Error()))
	if uerr := t.highlights.UpdateHighlightStatus(
		ctx, t.highlightID, domain.HighlightStatusFailed, created, userFacingReason(err),
	); uerr != nil {
		t.logger.Error("failed to update highlight status to failed", slog.String("error", uerr.Error()))
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// userFacingReason is the message stored on a failed highlight.
func userFacingReason(err error) string {
	switch {
	case errors.Is(err, generation.ErrContentBlocked):
		return "The text was blocked by the language model's safety filters"
	case errors.Is(err, generation.ErrInvalidResponse):
		return "The language model returned an unusable response"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, generation.ErrTransientFailure):
		return "The language model is temporarily unavailable"
	case errors.Is(err, generation.ErrGenerationFailed):
		return "Card generation failed"
	default:
		return "Saving generated cards failed"
	}
}
