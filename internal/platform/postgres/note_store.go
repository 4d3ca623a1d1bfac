package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// PostgresNoteStore implements store.NoteStore.
type PostgresNoteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.NoteStore = (*PostgresNoteStore)(nil)

// NewPostgresNoteStore creates a note store.
func NewPostgresNoteStore(db store.DBTX, log *slog.Logger) *PostgresNoteStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresNoteStore{
		db:     db,
		logger: log.With(slog.String("component", "note_store")),
	}
}

// WithTx returns a store that runs its queries inside tx.
func (s *PostgresNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return &PostgresNoteStore{db: tx, logger: s.logger}
}

// Create inserts note and sets its ID.
func (s *PostgresNoteStore) Create(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notes (guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		note.GUID, note.NotetypeID, note.Mod, note.Usn, note.Tags,
		note.Fields, note.SortField, note.Csum, note.Flags, note.Data,
	).Scan(&note.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("note references missing notetype", slog.Int64("notetype_id", note.NotetypeID))
		} else {
			log.Error("failed to insert note", slog.String("error", err.Error()))
		}
		return MapUniqueViolation(err, store.ErrDuplicateNote)
	}

	log.Debug("note created", slog.Int64("note_id", note.ID))
	return nil
}

// GetByID returns the note or store.ErrNoteNotFound.
func (s *PostgresNoteStore) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	var n domain.Note
	err := s.db.QueryRowContext(ctx, `
		SELECT id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data
		FROM notes WHERE id = $1`, id,
	).Scan(&n.ID, &n.GUID, &n.NotetypeID, &n.Mod, &n.Usn, &n.Tags,
		&n.Fields, &n.SortField, &n.Csum, &n.Flags, &n.Data)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to fetch note",
				slog.Int64("note_id", id),
				slog.String("error", err.Error()))
		}
		return nil, MapError(err, store.ErrNoteNotFound)
	}
	return &n, nil
}

// ExistsBySortField reports whether a note of the notetype already has this
// sort field. The checksum narrows the search and the text confirms it.
func (s *PostgresNoteStore) ExistsBySortField(ctx context.Context, notetypeID int64, csum int64, sortField string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM notes WHERE mid = $1 AND csum = $2 AND sfld = $3)`,
		notetypeID, csum, sortField,
	).Scan(&exists)
	if err != nil {
		return false, MapError(err, nil)
	}
	return exists, nil
}

// Update writes the note's fields and tags.
func (s *PostgresNoteStore) Update(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE notes
		SET mod = $1, usn = $2, tags = $3, flds = $4, sfld = $5, csum = $6
		WHERE id = $7`,
		note.Mod, note.Usn, note.Tags, note.Fields, note.SortField, note.Csum, note.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("note sort field already taken", slog.Int64("note_id", note.ID))
		} else {
			log.Error("failed to update note", slog.Int64("note_id", note.ID), slog.String("error", err.Error()))
		}
		return MapUniqueViolation(err, store.ErrDuplicateNote)
	}
	if err := CheckRowsAffected(result, store.ErrNoteNotFound); err != nil {
		return err
	}
	log.Debug("note updated", slog.Int64("note_id", note.ID))
	return nil
}

// DeleteOrphans deletes those of ids that no longer have any card and
// returns how many were removed.
func (s *PostgresNoteStore) DeleteOrphans(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM notes n
		WHERE n.id = ANY($1)
		AND NOT EXISTS (SELECT 1 FROM cards c WHERE c.nid = n.id)`, ids)
	if err != nil {
		log.Error("failed to delete orphaned notes", slog.String("error", err.Error()))
		return 0, MapError(err, nil)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Debug("orphaned notes deleted", slog.Int64("count", n))
	}
	return int(n), nil
}
