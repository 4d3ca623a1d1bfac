package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/flashcard-api/internal/domain"
)

// Common errors
var (
	ErrNilCard       = errors.New("card cannot be nil")
	ErrNilCollection = errors.New("collection cannot be nil")
)

// Result is the outcome of answering a card.
type Result struct {
	// Card is the rescheduled copy of the answered card.
	Card *domain.Card

	// RevLog describes the review. Its ID is left for the store to assign.
	RevLog domain.RevLog
}

// Service defines the interface for SRS algorithm operations
type Service interface {
	// Answer reschedules card for the given ease at time now. col provides
	// the day index that review due values are relative to.
	Answer(card *domain.Card, col *domain.Collection, ease Ease, now time.Time) (*Result, error)
}

type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{params: params}
}

func (s *defaultService) Answer(
	card *domain.Card,
	col *domain.Collection,
	ease Ease,
	now time.Time,
) (*Result, error) {
	if card == nil {
		return nil, ErrNilCard
	}
	if col == nil {
		return nil, ErrNilCollection
	}
	if !ease.Valid() {
		return nil, domain.ErrInvalidEase
	}

	next, log := schedule(*card, ease, clock{
		nowSecs: now.Unix(),
		today:   col.DaysSinceCreation(now),
	}, s.params)
	next.Mod = now.Unix()

	return &Result{Card: &next, RevLog: log}, nil
}
