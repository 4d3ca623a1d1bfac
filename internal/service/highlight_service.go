package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/events"
	"github.com/phrazzld/flashcard-api/internal/generation"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
	"github.com/phrazzld/flashcard-api/internal/task"
)

// CreateHighlightParams describes a highlight submitted for card generation.
type CreateHighlightParams struct {
	DeckName  string
	Text      string
	SourceURL string
	// Count is the number of cards to ask for; see generation.ClampCount.
	Count int
}

// HighlightService accepts highlights and tracks their asynchronous
// generation. GetHighlight and UpdateHighlightStatus are not scoped to a
// user and serve the background task.
type HighlightService interface {
	// CreateHighlight stores a pending highlight and requests a generation task for it.
	CreateHighlight(ctx context.Context, userID uuid.UUID, params CreateHighlightParams) (*domain.Highlight, error)

	// GetHighlightForUser returns the highlight when userID owns it.
	GetHighlightForUser(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.Highlight, error)

	ListHighlights(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Highlight, error)

	GetHighlight(ctx context.Context, id uuid.UUID) (*domain.Highlight, error)

	UpdateHighlightStatus(
		ctx context.Context,
		id uuid.UUID,
		status domain.HighlightStatus,
		cardCount int,
		errMsg string,
	) error
}

type highlightServiceImpl struct {
	stores  Stores
	emitter events.EventEmitter
	logger  *slog.Logger
}

var _ task.HighlightService = (HighlightService)(nil)

// NewHighlightService creates a HighlightService that emits generation
// requests through emitter.
func NewHighlightService(stores Stores, emitter events.EventEmitter, log *slog.Logger) (HighlightService, error) {
	if err := stores.require("collections", "decks", "highlights"); err != nil {
		return nil, err
	}
	if emitter == nil {
		return nil, fmt.Errorf("%w: event emitter", ErrMissingDependency)
	}
	if log == nil {
		log = slog.Default()
	}
	return &highlightServiceImpl{
		stores:  stores,
		emitter: emitter,
		logger:  log.With(slog.String("component", "highlight_service")),
	}, nil
}

func highlightNotFound(op string, err error) error {
	return newPublicError("highlight", op, "Highlight not found", err)
}

func (s *highlightServiceImpl) CreateHighlight(
	ctx context.Context,
	userID uuid.UUID,
	params CreateHighlightParams,
) (*domain.Highlight, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	col, err := loadCollection(ctx, s.stores.Collections, userID)
	if err != nil {
		return nil, err
	}
	deck, err := s.stores.Decks.GetByName(ctx, col.ID, params.DeckName)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return nil, deckNameNotFound("highlight", "create", params.DeckName, err)
		}
		return nil, fmt.Errorf("failed to load deck: %w", err)
	}

	h, err := domain.NewHighlight(userID, deck.ID, params.Text, params.SourceURL, generation.ClampCount(params.Count))
	if err != nil {
		return nil, highlightValidation(err)
	}
	if err := s.stores.Highlights.Create(ctx, h); err != nil {
		log.Error("failed to save highlight", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save highlight: %w", err)
	}
	log = log.With(slog.String("highlight_id", h.ID.String()))

	event, err := events.NewTaskRequestEvent(task.TaskTypeHighlightGeneration, map[string]string{
		"highlight_id": h.ID.String(),
	})
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Error("failed to request card generation", slog.String("error", err.Error()))
		if uerr := s.stores.Highlights.UpdateStatus(ctx, h.ID, domain.HighlightStatusFailed, 0,
			"Card generation could not be scheduled"); uerr != nil {
			log.Error("failed to mark highlight as failed", slog.String("error", uerr.Error()))
		}
		return nil, fmt.Errorf("failed to request card generation: %w", err)
	}

	log.Info("highlight accepted", slog.Int64("deck_id", deck.ID), slog.Int("requested", h.Requested))
	return h, nil
}

func highlightValidation(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyHighlightText):
		return domain.NewValidationError("text", "cannot be empty", err)
	case errors.Is(err, domain.ErrHighlightTooLong):
		return domain.NewValidationError("text",
			fmt.Sprintf("must be at most %d characters", domain.MaxHighlightLength), err)
	default:
		return domain.NewValidationError("", err.Error(), err)
	}
}

func (s *highlightServiceImpl) GetHighlightForUser(
	ctx context.Context,
	userID uuid.UUID,
	id uuid.UUID,
) (*domain.Highlight, error) {
	h, err := s.stores.Highlights.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrHighlightNotFound) {
			return nil, highlightNotFound("get", err)
		}
		return nil, fmt.Errorf("failed to get highlight: %w", err)
	}
	if h.UserID != userID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("highlight requested by another user",
			slog.String("highlight_id", id.String()))
		return nil, highlightNotFound("get", store.ErrHighlightNotFound)
	}
	return h, nil
}

func (s *highlightServiceImpl) ListHighlights(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Highlight, error) {
	limit, offset = NormalizePage(limit, offset)
	out, err := s.stores.Highlights.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	return out, nil
}

func (s *highlightServiceImpl) GetHighlight(ctx context.Context, id uuid.UUID) (*domain.Highlight, error) {
	h, err := s.stores.Highlights.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get highlight: %w", err)
	}
	return h, nil
}

func (s *highlightServiceImpl) UpdateHighlightStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.HighlightStatus,
	cardCount int,
	errMsg string,
) error {
	if !status.Valid() {
		return domain.ErrInvalidHighlightStatus
	}
	if err := s.stores.Highlights.UpdateStatus(ctx, id, status, cardCount, errMsg); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update highlight status",
			slog.String("highlight_id", id.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update highlight status: %w", err)
	}
	return nil
}
