package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// Page size limits for list operations.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Stores is the set of stores the services are built from. A service only
// requires the fields it uses.
type Stores struct {
	Users       store.UserStore
	Collections store.CollectionStore
	Decks       store.DeckStore
	Notetypes   store.NotetypeStore
	Notes       store.NoteStore
	Cards       store.CardStore
	RevLogs     store.RevLogStore
	Highlights  store.HighlightStore
}

// withTx returns copies of the stores bound to tx.
func (s Stores) withTx(tx *sql.Tx) Stores {
	out := Stores{}
	if s.Users != nil {
		out.Users = s.Users.WithTx(tx)
	}
	if s.Collections != nil {
		out.Collections = s.Collections.WithTx(tx)
	}
	if s.Decks != nil {
		out.Decks = s.Decks.WithTx(tx)
	}
	if s.Notetypes != nil {
		out.Notetypes = s.Notetypes.WithTx(tx)
	}
	if s.Notes != nil {
		out.Notes = s.Notes.WithTx(tx)
	}
	if s.Cards != nil {
		out.Cards = s.Cards.WithTx(tx)
	}
	if s.RevLogs != nil {
		out.RevLogs = s.RevLogs.WithTx(tx)
	}
	if s.Highlights != nil {
		out.Highlights = s.Highlights.WithTx(tx)
	}
	return out
}

// require reports the first of the named stores that is nil.
func (s Stores) require(names ...string) error {
	present := map[string]bool{
		"users":       s.Users != nil,
		"collections": s.Collections != nil,
		"decks":       s.Decks != nil,
		"notetypes":   s.Notetypes != nil,
		"notes":       s.Notes != nil,
		"cards":       s.Cards != nil,
		"revlogs":     s.RevLogs != nil,
		"highlights":  s.Highlights != nil,
	}
	for _, n := range names {
		if !present[n] {
			return fmt.Errorf("%w: %s store", ErrMissingDependency, n)
		}
	}
	return nil
}

// loadCollection returns the collection owned by userID.
func loadCollection(ctx context.Context, cols store.CollectionStore, userID uuid.UUID) (*domain.Collection, error) {
	col, err := cols.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return col, nil
}

// NormalizePage applies the default and maximum page sizes.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// modTime is the modification time recorded for a change made by a client
// whose clock is offsetMinutes behind UTC.
func modTime(now time.Time, offsetMinutes int) int64 {
	return now.Add(-time.Duration(offsetMinutes) * time.Minute).Unix()
}
