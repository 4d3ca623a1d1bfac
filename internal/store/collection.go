package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
)

// CollectionStore persists collections and the deck configs they own.
type CollectionStore interface {
	// Create stores col and sets its ID.
	Create(ctx context.Context, col *domain.Collection) error

	// GetByUserID returns ErrCollectionNotFound when the user has none.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Collection, error)

	// Touch sets the collection modification time.
	Touch(ctx context.Context, id int64, mod int64) error

	// CreateDeckConfig stores cfg and sets its ID.
	CreateDeckConfig(ctx context.Context, cfg *domain.DeckConfig) error

	// GetDeckConfig returns ErrDeckConfigNotFound unless id belongs to the collection.
	GetDeckConfig(ctx context.Context, collectionID, id int64) (*domain.DeckConfig, error)

	// GetDefaultDeckConfig returns the collection's oldest deck config.
	GetDefaultDeckConfig(ctx context.Context, collectionID int64) (*domain.DeckConfig, error)

	WithTx(tx *sql.Tx) CollectionStore
}
