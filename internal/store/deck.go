package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashcard-api/internal/domain"
)

// DeckSummary is a deck together with the number of cards it holds.
type DeckSummary struct {
	Deck      domain.Deck
	CardCount int
}

// DeckDeletion reports what a deck delete removed.
type DeckDeletion struct {
	Cards   int
	NoteIDs []int64
}

// DeckStore persists decks. Every read is scoped to a collection so
// that users never see each other's decks.
type DeckStore interface {
	// Create stores deck and sets its ID. Returns ErrDeckNameExists when the
	// collection already has a deck with the same name.
	Create(ctx context.Context, deck *domain.Deck) error

	GetByID(ctx context.Context, collectionID, id int64) (*domain.Deck, error)

	// GetByName matches the exact name within the collection.
	GetByName(ctx context.Context, collectionID int64, name string) (*domain.Deck, error)

	// List returns decks ordered by name with their card counts.
	List(ctx context.Context, collectionID int64, limit, offset int) ([]DeckSummary, error)

	CountCards(ctx context.Context, deckID int64) (int, error)

	// Update rewrites name, config and modification time.
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes the deck and its cards, returning the affected note ids
	// so that orphaned notes can be cleaned up.
	Delete(ctx context.Context, collectionID, id int64) (*DeckDeletion, error)

	WithTx(tx *sql.Tx) DeckStore
}
