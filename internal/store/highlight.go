package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
)

// HighlightStore persists highlights submitted for card generation.
type HighlightStore interface {
	Create(ctx context.Context, h *domain.Highlight) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Highlight, error)

	// ListByUser returns the user's highlights, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Highlight, error)

	// UpdateStatus records progress of generation for the highlight.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.HighlightStatus, cardCount int, errMsg string) error

	WithTx(tx *sql.Tx) HighlightStore
}
