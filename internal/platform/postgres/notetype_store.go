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

// PostgresNotetypeStore implements store.NotetypeStore. A notetype is
// stored across three tables: notetypes, fields and templates.
type PostgresNotetypeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.NotetypeStore = (*PostgresNotetypeStore)(nil)

// NewPostgresNotetypeStore creates a notetype store.
func NewPostgresNotetypeStore(db store.DBTX, log *slog.Logger) *PostgresNotetypeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresNotetypeStore{
		db:     db,
		logger: log.With(slog.String("component", "notetype_store")),
	}
}

// WithTx returns a store that runs its queries inside tx.
func (s *PostgresNotetypeStore) WithTx(tx *sql.Tx) store.NotetypeStore {
	return &PostgresNotetypeStore{db: tx, logger: s.logger}
}

func rawOrEmpty(b []byte) []byte {
	if len(b) == 0 {
		return []byte(`{}`)
	}
	return b
}

// Create inserts the notetype with its fields and templates. It should run
// inside a transaction so a partial notetype is never visible.
func (s *PostgresNotetypeStore) Create(ctx context.Context, nt *domain.Notetype) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notetypes (collection_id, name, mtime_secs, usn, config)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		nt.CollectionID, nt.Name, nt.MtimeSecs, nt.Usn, rawOrEmpty(nt.Config),
	).Scan(&nt.ID)
	if err != nil {
		log.Error("failed to insert notetype",
			slog.String("notetype", nt.Name),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}

	for i := range nt.Fields {
		f := &nt.Fields[i]
		f.NotetypeID = nt.ID
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO fields (ntid, ord, name, config) VALUES ($1, $2, $3, $4)`,
			f.NotetypeID, f.Ord, f.Name, rawOrEmpty(f.Config),
		); err != nil {
			log.Error("failed to insert field", slog.String("field", f.Name), slog.String("error", err.Error()))
			return MapError(err, nil)
		}
	}
	for i := range nt.Templates {
		t := &nt.Templates[i]
		t.NotetypeID = nt.ID
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO templates (ntid, ord, name, mtime_secs, usn, config)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			t.NotetypeID, t.Ord, t.Name, t.MtimeSecs, t.Usn, rawOrEmpty(t.Config),
		); err != nil {
			log.Error("failed to insert template", slog.String("template", t.Name), slog.String("error", err.Error()))
			return MapError(err, nil)
		}
	}

	log.Info("notetype created",
		slog.Int64("notetype_id", nt.ID),
		slog.String("notetype", nt.Name))
	return nil
}

// GetByName loads the notetype together with its fields and templates.
func (s *PostgresNotetypeStore) GetByName(ctx context.Context, collectionID int64, name string) (*domain.Notetype, error) {
	var (
		nt  domain.Notetype
		raw []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, collection_id, name, mtime_secs, usn, config
		FROM notetypes WHERE collection_id = $1 AND name = $2`, collectionID, name,
	).Scan(&nt.ID, &nt.CollectionID, &nt.Name, &nt.MtimeSecs, &nt.Usn, &raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to fetch notetype",
				slog.String("notetype", name),
				slog.String("error", err.Error()))
		}
		return nil, MapError(err, store.ErrNotetypeNotFound)
	}
	nt.Config = raw

	if err := s.loadParts(ctx, &nt); err != nil {
		return nil, err
	}
	return &nt, nil
}

// List returns the collection's notetypes by name, without fields or templates.
func (s *PostgresNotetypeStore) List(ctx context.Context, collectionID int64) ([]*domain.Notetype, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection_id, name, mtime_secs, usn, config
		FROM notetypes WHERE collection_id = $1 ORDER BY name`, collectionID)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Notetype
	for rows.Next() {
		var (
			nt  domain.Notetype
			raw []byte
		)
		if err := rows.Scan(&nt.ID, &nt.CollectionID, &nt.Name, &nt.MtimeSecs, &nt.Usn, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan notetype: %w", err)
		}
		nt.Config = raw
		out = append(out, &nt)
	}
	return out, MapError(rows.Err(), nil)
}

func (s *PostgresNotetypeStore) loadParts(ctx context.Context, nt *domain.Notetype) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ntid, ord, name, config FROM fields WHERE ntid = $1 ORDER BY ord`, nt.ID)
	if err != nil {
		return MapError(err, nil)
	}
	for rows.Next() {
		var (
			f   domain.Field
			raw []byte
		)
		if err := rows.Scan(&f.NotetypeID, &f.Ord, &f.Name, &raw); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan field: %w", err)
		}
		f.Config = raw
		nt.Fields = append(nt.Fields, f)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return MapError(err, nil)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT ntid, ord, name, mtime_secs, usn, config
		FROM templates WHERE ntid = $1 ORDER BY ord`, nt.ID)
	if err != nil {
		return MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			t   domain.Template
			raw []byte
		)
		if err := rows.Scan(&t.NotetypeID, &t.Ord, &t.Name, &t.MtimeSecs, &t.Usn, &raw); err != nil {
			return fmt.Errorf("failed to scan template: %w", err)
		}
		t.Config = raw
		nt.Templates = append(nt.Templates, t)
	}
	return MapError(rows.Err(), nil)
}
