package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/domain/srs"
	"github.com/phrazzld/flashcard-api/internal/service"
	"github.com/phrazzld/flashcard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerFunc func(card *domain.Card, col *domain.Collection, ease srs.Ease, now time.Time) (*srs.Result, error)

func (f schedulerFunc) Answer(card *domain.Card, col *domain.Collection, ease srs.Ease, now time.Time) (*srs.Result, error) {
	return f(card, col, ease, now)
}

func (e *testEnv) reviews(scheduler srs.Service) service.ReviewService {
	svc, err := service.NewReviewService(e.db, e.stores, scheduler, e.logger)
	require.NoError(e.t, err)
	return svc
}

func TestReviewService_ReviewCard(t *testing.T) {
	t.Run("new card moves through learning to review", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.register("review@example.com")
		env.createDeck(userID, "Deck")
		cardID := env.createCard(userID, "Deck", "front", "back", "")
		svc := env.reviews(nil)

		env.expectCommit(1)
		first, err := svc.ReviewCard(env.ctx, userID, cardID, srs.EaseGood, 4200)
		require.NoError(t, err)
		assert.Equal(t, domain.CardTypeLearning, first.Card.Type)
		assert.Equal(t, domain.QueueLearning, first.Card.Queue)
		assert.Equal(t, 1, first.Card.Reps)
		assert.Equal(t, domain.CardTypeNew, first.RevLog.Type)
		assert.Equal(t, 3, first.RevLog.Ease)
		assert.Equal(t, 4200, first.RevLog.Time)
		assert.False(t, first.ReviewedAt.IsZero())

		env.expectCommit(1)
		second, err := svc.ReviewCard(env.ctx, userID, cardID, srs.EaseGood, 90000)
		require.NoError(t, err)
		assert.Equal(t, domain.CardTypeReview, second.Card.Type)
		assert.Equal(t, service.MaxAnswerTimeMs, second.RevLog.Time)

		stored, err := env.cards().GetCard(env.ctx, userID, cardID)
		require.NoError(t, err)
		assert.Equal(t, domain.CardTypeReview, stored.Card.Type)
		assert.Equal(t, 2, stored.Card.Reps)

		logs, err := env.mem.RevLogs.ListByCard(env.ctx, cardID)
		require.NoError(t, err)
		assert.Len(t, logs, 2)
	})

	t.Run("invalid ease", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.register("review@example.com")

		for _, ease := range []srs.Ease{0, 5, -1} {
			_, err := env.reviews(nil).ReviewCard(env.ctx, userID, 1, ease, 0)
			assert.True(t, domain.IsValidationError(err))
			assert.ErrorIs(t, err, domain.ErrInvalidEase)
		}
	})

	t.Run("negative answer time is recorded as zero", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.register("review@example.com")
		env.createDeck(userID, "Deck")
		cardID := env.createCard(userID, "Deck", "front", "back", "")
		env.expectCommit(1)

		res, err := env.reviews(nil).ReviewCard(env.ctx, userID, cardID, srs.EaseAgain, -10)
		require.NoError(t, err)
		assert.Equal(t, 0, res.RevLog.Time)
	})

	t.Run("card of another user", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.register("owner@example.com")
		other := env.register("other@example.com")
		env.createDeck(owner, "Deck")
		cardID := env.createCard(owner, "Deck", "front", "back", "")
		env.expectRollback()

		_, err := env.reviews(nil).ReviewCard(env.ctx, other, cardID, srs.EaseGood, 0)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})

	t.Run("scheduler failure leaves the card untouched", func(t *testing.T) {
		env := newTestEnv(t)
		userID := env.register("review@example.com")
		env.createDeck(userID, "Deck")
		cardID := env.createCard(userID, "Deck", "front", "back", "")
		env.expectRollback()

		failing := schedulerFunc(func(*domain.Card, *domain.Collection, srs.Ease, time.Time) (*srs.Result, error) {
			return nil, errors.New("scheduler exploded")
		})
		_, err := env.reviews(failing).ReviewCard(env.ctx, userID, cardID, srs.EaseGood, 0)
		assert.ErrorContains(t, err, "scheduler exploded")

		logs, err := env.mem.RevLogs.ListByCard(env.ctx, cardID)
		require.NoError(t, err)
		assert.Empty(t, logs)
	})
}
