package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// PostgresRevLogStore implements store.RevLogStore.
type PostgresRevLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.RevLogStore = (*PostgresRevLogStore)(nil)

// NewPostgresRevLogStore creates a review log store.
func NewPostgresRevLogStore(db store.DBTX, log *slog.Logger) *PostgresRevLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresRevLogStore{
		db:     db,
		logger: log.With(slog.String("component", "revlog_store")),
	}
}

// WithTx returns a store that runs its queries inside tx.
func (s *PostgresRevLogStore) WithTx(tx *sql.Tx) store.RevLogStore {
	return &PostgresRevLogStore{db: tx, logger: s.logger}
}

// Create appends a review entry and sets its ID.
func (s *PostgresRevLogStore) Create(ctx context.Context, entry *domain.RevLog) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO revlog (cid, usn, ease, ivl, lastivl, factor, time, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		entry.CardID, entry.Usn, entry.Ease, entry.Ivl, entry.LastIvl, entry.Factor, entry.Time, entry.Type,
	).Scan(&entry.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert review log",
			slog.Int64("card_id", entry.CardID),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}
	return nil
}

// ListByCard returns a card's reviews oldest first.
func (s *PostgresRevLogStore) ListByCard(ctx context.Context, cardID int64) ([]domain.RevLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cid, usn, ease, ivl, lastivl, factor, time, type
		FROM revlog WHERE cid = $1 ORDER BY id ASC`, cardID)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.RevLog
	for rows.Next() {
		var r domain.RevLog
		if err := rows.Scan(&r.ID, &r.CardID, &r.Usn, &r.Ease, &r.Ivl, &r.LastIvl, &r.Factor, &r.Time, &r.Type); err != nil {
			return nil, fmt.Errorf("failed to scan review log: %w", err)
		}
		out = append(out, r)
	}
	return out, MapError(rows.Err(), nil)
}
