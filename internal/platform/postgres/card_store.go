package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
)

const cardColumns = `c.id, c.nid, c.did, c.ord, c.mod, c.usn, c.type_id, c.queue_id, c.due,
	c.ivl, c.factor, c.reps, c.lapses, c."left", c.odue, c.odid, c.flags, c.data`

const noteColumns = `n.id, n.guid, n.mid, n.mod, n.usn, n.tags, n.flds, n.sfld, n.csum, n.flags, n.data`

// cardViewFrom joins a card to its note and deck and restricts it to one
// collection through the deck.
const cardViewFrom = `
	FROM cards c
	JOIN notes n ON n.id = c.nid
	JOIN decks d ON d.id = c.did`

// PostgresCardStore implements store.CardStore.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.CardStore = (*PostgresCardStore)(nil)

// NewPostgresCardStore creates a card store.
func NewPostgresCardStore(db store.DBTX, log *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresCardStore{
		db:     db,
		logger: log.With(slog.String("component", "card_store")),
	}
}

// WithTx returns a store that runs its queries inside tx.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger}
}

func cardDest(c *domain.Card) []interface{} {
	return []interface{}{
		&c.ID, &c.NoteID, &c.DeckID, &c.Ord, &c.Mod, &c.Usn, &c.Type, &c.Queue, &c.Due,
		&c.Ivl, &c.Factor, &c.Reps, &c.Lapses, &c.Left, &c.Odue, &c.Odid, &c.Flags, &c.Data,
	}
}

func noteDest(n *domain.Note) []interface{} {
	return []interface{}{
		&n.ID, &n.GUID, &n.NotetypeID, &n.Mod, &n.Usn, &n.Tags,
		&n.Fields, &n.SortField, &n.Csum, &n.Flags, &n.Data,
	}
}

func scanCardView(row rowScanner, v *store.CardView) error {
	dest := append(cardDest(&v.Card), noteDest(&v.Note)...)
	dest = append(dest, &v.DeckName)
	return row.Scan(dest...)
}

// Create inserts card and sets its ID.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO cards (nid, did, ord, mod, usn, type_id, queue_id, due, ivl, factor,
			reps, lapses, "left", odue, odid, flags, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`,
		card.NoteID, card.DeckID, card.Ord, card.Mod, card.Usn, card.Type, card.Queue, card.Due,
		card.Ivl, card.Factor, card.Reps, card.Lapses, card.Left, card.Odue, card.Odid, card.Flags, card.Data,
	).Scan(&card.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("card references missing note or deck",
				slog.Int64("note_id", card.NoteID),
				slog.Int64("deck_id", card.DeckID))
		} else {
			log.Error("failed to insert card", slog.String("error", err.Error()))
		}
		return MapError(err, nil)
	}

	log.Info("card created",
		slog.Int64("card_id", card.ID),
		slog.Int64("note_id", card.NoteID),
		slog.Int64("deck_id", card.DeckID))
	return nil
}

// GetByID returns a card in the collection or store.ErrCardNotFound.
func (s *PostgresCardStore) GetByID(ctx context.Context, collectionID, id int64) (*domain.Card, error) {
	var c domain.Card
	err := s.db.QueryRowContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards c JOIN decks d ON d.id = c.did
		WHERE d.collection_id = $1 AND c.id = $2`, collectionID, id,
	).Scan(cardDest(&c)...)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to fetch card",
				slog.Int64("card_id", id),
				slog.String("error", err.Error()))
		}
		return nil, MapError(err, store.ErrCardNotFound)
	}
	return &c, nil
}

// GetView returns the card with its note and deck name.
func (s *PostgresCardStore) GetView(ctx context.Context, collectionID, id int64) (*store.CardView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var v store.CardView
	err := scanCardView(s.db.QueryRowContext(ctx, `
		SELECT `+cardColumns+`, `+noteColumns+`, d.name`+cardViewFrom+`
		WHERE d.collection_id = $1 AND c.id = $2`, collectionID, id), &v)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to fetch card view",
				slog.Int64("card_id", id),
				slog.String("error", err.Error()))
		}
		return nil, MapError(err, store.ErrCardNotFound)
	}
	log.Debug("card retrieved", slog.Int64("card_id", id))
	return &v, nil
}

// buildCardFilter renders filter as a WHERE clause and its arguments. The
// first placeholder is always the collection ID.
func buildCardFilter(collectionID int64, filter store.CardFilter) (string, []interface{}) {
	conds := []string{"d.collection_id = $1"}
	args := []interface{}{collectionID}
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.DeckName != "" {
		conds = append(conds, "d.name = "+next(filter.DeckName))
	}
	if filter.Type != nil {
		conds = append(conds, "c.type_id = "+next(int(*filter.Type)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		conds = append(conds, "n.flds ILIKE "+next("%"+escapeLike(q)+"%"))
	}
	for _, tag := range filter.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		conds = append(conds, "n.tags ILIKE "+next("% "+escapeLike(tag)+" %"))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// List returns cards matching filter ordered by card ID.
func (s *PostgresCardStore) List(ctx context.Context, collectionID int64, filter store.CardFilter) ([]store.CardView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildCardFilter(collectionID, filter)
	query := `SELECT ` + cardColumns + `, ` + noteColumns + `, d.name` + cardViewFrom + where +
		fmt.Sprintf(" ORDER BY c.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list cards", slog.String("error", err.Error()))
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	var out []store.CardView
	for rows.Next() {
		var v store.CardView
		if err := scanCardView(rows, &v); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err, nil)
	}
	log.Debug("cards listed", slog.Int("count", len(out)))
	return out, nil
}

// MaxNewDue returns the highest due position among the deck's new cards,
// or 0 when it has none.
func (s *PostgresCardStore) MaxNewDue(ctx context.Context, deckID int64) (int64, error) {
	var due int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(due), 0) FROM cards
		WHERE did = $1 AND type_id = $2 AND queue_id = $3`,
		deckID, domain.CardTypeNew, domain.QueueNew,
	).Scan(&due)
	if err != nil {
		return 0, MapError(err, nil)
	}
	return due, nil
}

// Update writes the card's scheduling state.
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET did = $1, mod = $2, usn = $3, type_id = $4, queue_id = $5, due = $6, ivl = $7,
			factor = $8, reps = $9, lapses = $10, "left" = $11, odue = $12, odid = $13, flags = $14
		WHERE id = $15`,
		card.DeckID, card.Mod, card.Usn, card.Type, card.Queue, card.Due, card.Ivl,
		card.Factor, card.Reps, card.Lapses, card.Left, card.Odue, card.Odid, card.Flags, card.ID,
	)
	if err != nil {
		log.Error("failed to update card",
			slog.Int64("card_id", card.ID),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}
	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}
	log.Debug("card updated", slog.Int64("card_id", card.ID))
	return nil
}

// TouchByNote sets the modification time of every card of a note.
func (s *PostgresCardStore) TouchByNote(ctx context.Context, noteID int64, mod int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE cards SET mod = $1 WHERE nid = $2`, mod, noteID); err != nil {
		return MapError(err, nil)
	}
	return nil
}

// Delete removes one card. Callers scope the ID to a collection first.
func (s *PostgresCardStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.Int64("card_id", id),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}
	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}
	log.Info("card deleted", slog.Int64("card_id", id))
	return nil
}
