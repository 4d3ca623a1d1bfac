package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashcard-api/internal/domain"
)

// RevLogStore persists review history.
type RevLogStore interface {
	// Create stores the entry and sets its ID.
	Create(ctx context.Context, entry *domain.RevLog) error

	// ListByCard returns the card's reviews, newest first.
	ListByCard(ctx context.Context, cardID int64) ([]domain.RevLog, error)

	WithTx(tx *sql.Tx) RevLogStore
}
