package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxHighlightLength bounds the text that can be submitted for generation.
const MaxHighlightLength = 20000

// HighlightStatus tracks a highlight through asynchronous card generation.
type HighlightStatus string

// Highlight statuses
const (
	HighlightStatusPending             HighlightStatus = "pending"
	HighlightStatusProcessing          HighlightStatus = "processing"
	HighlightStatusCompleted           HighlightStatus = "completed"
	HighlightStatusCompletedWithErrors HighlightStatus = "completed_with_errors"
	HighlightStatusFailed              HighlightStatus = "failed"
)

// Valid reports whether s is a known status.
func (s HighlightStatus) Valid() bool {
	switch s {
	case HighlightStatusPending, HighlightStatusProcessing, HighlightStatusCompleted,
		HighlightStatusCompletedWithErrors, HighlightStatusFailed:
		return true
	}
	return false
}

// Highlight errors
var (
	ErrEmptyHighlightText = errors.New("highlight text cannot be empty")
	ErrHighlightTooLong   = errors.New("highlight text is too long")
)

// Highlight is an excerpt submitted by a user for AI card generation into a
// deck. Requested is the number of cards asked for; CardCount is the number
// actually created.
type Highlight struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	DeckID       int64           `json:"deck_id"`
	Text         string          `json:"text"`
	SourceURL    string          `json:"source_url,omitempty"`
	Requested    int             `json:"requested"`
	Status       HighlightStatus `json:"status"`
	CardCount    int             `json:"card_count"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewHighlight creates a pending highlight.
func NewHighlight(userID uuid.UUID, deckID int64, text, sourceURL string, requested int) (*Highlight, error) {
	now := time.Now().UTC()
	h := &Highlight{
		ID:        uuid.New(),
		UserID:    userID,
		DeckID:    deckID,
		Text:      strings.TrimSpace(text),
		SourceURL: strings.TrimSpace(sourceURL),
		Requested: requested,
		Status:    HighlightStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks the highlight's invariants.
func (h *Highlight) Validate() error {
	if h.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if h.Text == "" {
		return ErrEmptyHighlightText
	}
	if utf8.RuneCountInString(h.Text) > MaxHighlightLength {
		return ErrHighlightTooLong
	}
	if !h.Status.Valid() {
		return ErrInvalidHighlightStatus
	}
	return nil
}

// IsFinal reports whether generation has finished, successfully or not.
func (h *Highlight) IsFinal() bool {
	switch h.Status {
	case HighlightStatusCompleted, HighlightStatusCompletedWithErrors, HighlightStatusFailed:
		return true
	}
	return false
}
