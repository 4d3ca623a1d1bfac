package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashcard-api/internal/domain"
)

// NotetypeStore persists notetypes with their fields and templates.
type NotetypeStore interface {
	// Create stores nt, its fields and its templates and sets the IDs.
	Create(ctx context.Context, nt *domain.Notetype) error

	// GetByName loads the notetype with fields and templates ordered by ord.
	GetByName(ctx context.Context, collectionID int64, name string) (*domain.Notetype, error)

	List(ctx context.Context, collectionID int64) ([]*domain.Notetype, error)

	WithTx(tx *sql.Tx) NotetypeStore
}
