package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashcard-api/internal/domain"
)

// CardView joins a card with its note and deck name for presentation.
type CardView struct {
	Card     domain.Card
	Note     domain.Note
	DeckName string
}

// CardFilter narrows card listings. Zero values mean "no filter".
type CardFilter struct {
	DeckName string
	Type     *domain.CardType

	// Query matches front or back case-insensitively as a substring.
	Query string

	// Tags requires every listed tag to be present on the note.
	Tags []string

	Limit  int
	Offset int
}

// CardStore persists cards. Reads that take a collection ID only return
// cards whose deck belongs to that collection.
type CardStore interface {
	Create(ctx context.Context, card *domain.Card) error

	GetByID(ctx context.Context, collectionID, id int64) (*domain.Card, error)

	GetView(ctx context.Context, collectionID, id int64) (*CardView, error)

	List(ctx context.Context, collectionID int64, filter CardFilter) ([]CardView, error)

	// MaxNewDue returns the largest due position among new cards in the deck, or 0.
	MaxNewDue(ctx context.Context, deckID int64) (int64, error)

	// Update rewrites the scheduling state of the card.
	Update(ctx context.Context, card *domain.Card) error

	// TouchByNote sets the modification time of every card of a note.
	TouchByNote(ctx context.Context, noteID int64, mod int64) error

	Delete(ctx context.Context, id int64) error

	WithTx(tx *sql.Tx) CardStore
}
