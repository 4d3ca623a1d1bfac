package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/domain/srs"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// MaxAnswerTimeMs caps the answer time recorded in the review log.
const MaxAnswerTimeMs = 60000

// ReviewResult is the rescheduled card and the review log entry written for it.
type ReviewResult struct {
	Card       domain.Card
	RevLog     domain.RevLog
	ReviewedAt time.Time
}

// ReviewService records answers and reschedules cards.
type ReviewService interface {
	// ReviewCard applies ease to the card and logs the review. answerTimeMs
	// is the time the user spent answering.
	ReviewCard(ctx context.Context, userID uuid.UUID, cardID int64, ease srs.Ease, answerTimeMs int) (*ReviewResult, error)
}

type reviewServiceImpl struct {
	stores    Stores
	db        *sql.DB
	scheduler srs.Service
	logger    *slog.Logger
	now       func() time.Time
}

// NewReviewService creates a ReviewService. A nil scheduler uses the default SRS parameters.
func NewReviewService(db *sql.DB, stores Stores, scheduler srs.Service, log *slog.Logger) (ReviewService, error) {
	if err := stores.require("collections", "cards", "revlogs"); err != nil {
		return nil, err
	}
	if scheduler == nil {
		scheduler = srs.NewDefaultService()
	}
	if log == nil {
		log = slog.Default()
	}
	return &reviewServiceImpl{
		stores:    stores,
		db:        db,
		scheduler: scheduler,
		logger:    log.With(slog.String("component", "review_service")),
		now:       time.Now,
	}, nil
}

func (s *reviewServiceImpl) ReviewCard(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
	ease srs.Ease,
	answerTimeMs int,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("card_id", cardID))

	if !ease.Valid() {
		return nil, domain.NewValidationError("ease", "must be between 1 and 4", domain.ErrInvalidEase)
	}
	if answerTimeMs < 0 {
		answerTimeMs = 0
	}
	if answerTimeMs > MaxAnswerTimeMs {
		answerTimeMs = MaxAnswerTimeMs
	}

	now := s.now().UTC()
	var res *ReviewResult
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		st := s.stores.withTx(tx)

		col, err := loadCollection(ctx, st.Collections, userID)
		if err != nil {
			return err
		}
		card, err := st.Cards.GetByID(ctx, col.ID, cardID)
		if err != nil {
			if errors.Is(err, store.ErrCardNotFound) {
				return cardNotFound("review", cardID, err)
			}
			return err
		}

		answer, err := s.scheduler.Answer(card, col, ease, now)
		if err != nil {
			return fmt.Errorf("failed to schedule card: %w", err)
		}
		if err := st.Cards.Update(ctx, answer.Card); err != nil {
			return fmt.Errorf("failed to update card: %w", err)
		}

		entry := answer.RevLog
		entry.Time = answerTimeMs
		if err := st.RevLogs.Create(ctx, &entry); err != nil {
			return fmt.Errorf("failed to write review log: %w", err)
		}
		if err := st.Collections.Touch(ctx, col.ID, now.Unix()); err != nil {
			return fmt.Errorf("failed to touch collection: %w", err)
		}

		res = &ReviewResult{Card: *answer.Card, RevLog: entry, ReviewedAt: now}
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to review card", slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Info("card reviewed",
		slog.Int("ease", int(ease)),
		slog.String("type", res.Card.Type.Label()),
		slog.Int("ivl", res.Card.Ivl))
	return res, nil
}
