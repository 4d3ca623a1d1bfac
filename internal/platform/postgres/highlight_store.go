package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
)

const highlightColumns = `id, user_id, deck_id, text, source_url, requested, status,
	card_count, error_message, created_at, updated_at`

// PostgresHighlightStore implements store.HighlightStore.
type PostgresHighlightStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.HighlightStore = (*PostgresHighlightStore)(nil)

// NewPostgresHighlightStore creates a highlight store.
func NewPostgresHighlightStore(db store.DBTX, log *slog.Logger) *PostgresHighlightStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresHighlightStore{
		db:     db,
		logger: log.With(slog.String("component", "highlight_store")),
	}
}

// WithTx returns a store that runs its queries inside tx.
func (s *PostgresHighlightStore) WithTx(tx *sql.Tx) store.HighlightStore {
	return &PostgresHighlightStore{db: tx, logger: s.logger}
}

func scanHighlight(row rowScanner, h *domain.Highlight) error {
	return row.Scan(&h.ID, &h.UserID, &h.DeckID, &h.Text, &h.SourceURL, &h.Requested, &h.Status,
		&h.CardCount, &h.ErrorMessage, &h.CreatedAt, &h.UpdatedAt)
}

// Create validates and inserts the highlight.
func (s *PostgresHighlightStore) Create(ctx context.Context, h *domain.Highlight) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := h.Validate(); err != nil {
		log.Warn("invalid highlight", slog.String("error", err.Error()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO highlights (`+highlightColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		h.ID, h.UserID, h.DeckID, h.Text, h.SourceURL, h.Requested, h.Status,
		h.CardCount, h.ErrorMessage, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert highlight",
			slog.String("highlight_id", h.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}

	log.Info("highlight created",
		slog.String("highlight_id", h.ID.String()),
		slog.String("user_id", h.UserID.String()))
	return nil
}

// GetByID returns the highlight or store.ErrHighlightNotFound.
func (s *PostgresHighlightStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Highlight, error) {
	var h domain.Highlight
	err := scanHighlight(s.db.QueryRowContext(ctx,
		`SELECT `+highlightColumns+` FROM highlights WHERE id = $1`, id), &h)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to fetch highlight",
				slog.String("highlight_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, MapError(err, store.ErrHighlightNotFound)
	}
	return &h, nil
}

// ListByUser returns the user's highlights newest first.
func (s *PostgresHighlightStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Highlight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+highlightColumns+` FROM highlights
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Highlight
	for rows.Next() {
		var h domain.Highlight
		if err := scanHighlight(rows, &h); err != nil {
			return nil, fmt.Errorf("failed to scan highlight: %w", err)
		}
		out = append(out, &h)
	}
	return out, MapError(rows.Err(), nil)
}

// UpdateStatus records the outcome of processing a highlight.
func (s *PostgresHighlightStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.HighlightStatus,
	cardCount int,
	errMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.Valid() {
		return domain.ErrInvalidHighlightStatus
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE highlights
		SET status = $1, card_count = $2, error_message = $3, updated_at = $4
		WHERE id = $5`,
		status, cardCount, errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		log.Error("failed to update highlight status",
			slog.String("highlight_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}
	if err := CheckRowsAffected(result, store.ErrHighlightNotFound); err != nil {
		return err
	}

	log.Info("highlight status updated",
		slog.String("highlight_id", id.String()),
		slog.String("status", string(status)))
	return nil
}
