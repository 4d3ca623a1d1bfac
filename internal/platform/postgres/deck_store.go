package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
)

const deckColumns = `d.id, d.collection_id, d.config_id, d.name, d.mtime_secs, d.usn, d.common, d.kind`

// PostgresDeckStore implements store.DeckStore. Every lookup is scoped to a
// collection so one user can never address another user's decks.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.DeckStore = (*PostgresDeckStore)(nil)

// NewPostgresDeckStore creates a deck store.
func NewPostgresDeckStore(db store.DBTX, log *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresDeckStore{
		db:     db,
		logger: log.With(slog.String("component", "deck_store")),
	}
}

// WithTx returns a store that runs its queries inside tx.
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDeck(row rowScanner, d *domain.Deck, extra ...interface{}) error {
	dest := []interface{}{
		&d.ID, &d.CollectionID, &d.ConfigID, &d.Name, &d.MtimeSecs, &d.Usn, &d.Common, &d.Kind,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts deck and sets its ID. A name already used in the
// collection yields store.ErrDeckNameExists.
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("invalid deck", slog.String("error", err.Error()))
		return err
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO decks (collection_id, config_id, name, mtime_secs, usn, common, kind)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		deck.CollectionID, deck.ConfigID, deck.Name, deck.MtimeSecs, deck.Usn, deck.Common, deck.Kind,
	).Scan(&deck.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("deck name already exists", slog.String("deck_name", deck.Name))
			return store.ErrDeckNameExists
		}
		if IsForeignKeyViolation(err) {
			log.Warn("deck references missing collection or config",
				slog.Int64("collection_id", deck.CollectionID),
				slog.Int64("config_id", deck.ConfigID))
		} else {
			log.Error("failed to insert deck", slog.String("error", err.Error()))
		}
		return MapError(err, nil)
	}

	log.Info("deck created",
		slog.Int64("deck_id", deck.ID),
		slog.String("deck_name", deck.Name))
	return nil
}

// GetByID returns a deck in the collection or store.ErrDeckNotFound.
func (s *PostgresDeckStore) GetByID(ctx context.Context, collectionID, id int64) (*domain.Deck, error) {
	return s.getOne(ctx, `SELECT `+deckColumns+` FROM decks d
		WHERE d.collection_id = $1 AND d.id = $2`, collectionID, id)
}

// GetByName matches the exact deck name.
func (s *PostgresDeckStore) GetByName(ctx context.Context, collectionID int64, name string) (*domain.Deck, error) {
	return s.getOne(ctx, `SELECT `+deckColumns+` FROM decks d
		WHERE d.collection_id = $1 AND d.name = $2`, collectionID, name)
}

func (s *PostgresDeckStore) getOne(ctx context.Context, query string, args ...interface{}) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var d domain.Deck
	if err := scanDeck(s.db.QueryRowContext(ctx, query, args...), &d); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to fetch deck", slog.String("error", err.Error()))
		}
		return nil, MapError(err, store.ErrDeckNotFound)
	}
	log.Debug("deck retrieved", slog.Int64("deck_id", d.ID))
	return &d, nil
}

// List returns decks ordered by name with their card counts.
func (s *PostgresDeckStore) List(ctx context.Context, collectionID int64, limit, offset int) ([]store.DeckSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+deckColumns+`, COUNT(c.id)
		FROM decks d
		LEFT JOIN cards c ON c.did = d.id
		WHERE d.collection_id = $1
		GROUP BY d.id
		ORDER BY d.name ASC
		LIMIT $2 OFFSET $3`, collectionID, limit, offset)
	if err != nil {
		log.Error("failed to list decks", slog.String("error", err.Error()))
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	var out []store.DeckSummary
	for rows.Next() {
		var sum store.DeckSummary
		if err := scanDeck(rows, &sum.Deck, &sum.CardCount); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err, nil)
	}
	return out, nil
}

// CountCards returns the number of cards in the deck.
func (s *PostgresDeckStore) CountCards(ctx context.Context, deckID int64) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE did = $1`, deckID).Scan(&n); err != nil {
		return 0, MapError(err, nil)
	}
	return n, nil
}

// Update writes the deck's mutable columns.
func (s *PostgresDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE decks
		SET name = $1, config_id = $2, mtime_secs = $3, usn = $4, common = $5
		WHERE collection_id = $6 AND id = $7`,
		deck.Name, deck.ConfigID, deck.MtimeSecs, deck.Usn, deck.Common, deck.CollectionID, deck.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("deck name already exists", slog.String("deck_name", deck.Name))
			return store.ErrDeckNameExists
		}
		log.Error("failed to update deck", slog.String("error", err.Error()))
		return MapError(err, nil)
	}
	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		return err
	}

	log.Info("deck updated", slog.Int64("deck_id", deck.ID))
	return nil
}

// Delete removes the deck and its cards and reports the notes those cards
// belonged to, so the caller can remove notes left without cards.
func (s *PostgresDeckStore) Delete(ctx context.Context, collectionID, id int64) (*store.DeckDeletion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT c.nid FROM cards c
		JOIN decks d ON d.id = c.did
		WHERE d.collection_id = $1 AND d.id = $2`, collectionID, id)
	if err != nil {
		log.Error("failed to list deck notes", slog.String("error", err.Error()))
		return nil, MapError(err, nil)
	}
	deletion := &store.DeckDeletion{}
	for rows.Next() {
		var nid int64
		if err := rows.Scan(&nid); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan note id: %w", err)
		}
		deletion.NoteIDs = append(deletion.NoteIDs, nid)
	}
	if err := rows.Close(); err != nil {
		return nil, MapError(err, nil)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err, nil)
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM cards
		WHERE did = (SELECT id FROM decks WHERE collection_id = $1 AND id = $2)`, collectionID, id)
	if err != nil {
		log.Error("failed to delete deck cards", slog.String("error", err.Error()))
		return nil, MapError(err, nil)
	}
	if n, err := result.RowsAffected(); err == nil {
		deletion.Cards = int(n)
	}

	result, err = s.db.ExecContext(ctx, `DELETE FROM decks WHERE collection_id = $1 AND id = $2`, collectionID, id)
	if err != nil {
		log.Error("failed to delete deck", slog.String("error", err.Error()))
		return nil, MapError(err, nil)
	}
	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		return nil, err
	}

	log.Info("deck deleted",
		slog.Int64("deck_id", id),
		slog.Int("cards_deleted", deletion.Cards))
	return deletion, nil
}
