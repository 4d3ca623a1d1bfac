package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/platform/logger"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// PostgresCollectionStore implements store.CollectionStore. Deck configs
// live here as well since they belong to the collection rather than a deck.
type PostgresCollectionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.CollectionStore = (*PostgresCollectionStore)(nil)

// NewPostgresCollectionStore creates a collection store.
func NewPostgresCollectionStore(db store.DBTX, log *slog.Logger) *PostgresCollectionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresCollectionStore{
		db:     db,
		logger: log.With(slog.String("component", "collection_store")),
	}
}

// WithTx returns a store that runs its queries inside tx.
func (s *PostgresCollectionStore) WithTx(tx *sql.Tx) store.CollectionStore {
	return &PostgresCollectionStore{db: tx, logger: s.logger}
}

// Create inserts col and sets its ID.
func (s *PostgresCollectionStore) Create(ctx context.Context, col *domain.Collection) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO collections (user_id, crt, mod, ver, usn)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		col.UserID, col.Crt, col.Mod, col.Ver, col.Usn,
	).Scan(&col.ID)
	if err != nil {
		log.Error("failed to insert collection",
			slog.String("user_id", col.UserID.String()),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}

	log.Info("collection created",
		slog.Int64("collection_id", col.ID),
		slog.String("user_id", col.UserID.String()))
	return nil
}

// GetByUserID returns the user's collection or store.ErrCollectionNotFound.
func (s *PostgresCollectionStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Collection, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var c domain.Collection
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, crt, mod, ver, usn
		FROM collections WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.Crt, &c.Mod, &c.Ver, &c.Usn)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to fetch collection",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
		}
		return nil, MapError(err, store.ErrCollectionNotFound)
	}
	return &c, nil
}

// Touch bumps the collection modification time.
func (s *PostgresCollectionStore) Touch(ctx context.Context, id int64, mod int64) error {
	result, err := s.db.ExecContext(ctx, `UPDATE collections SET mod = $1 WHERE id = $2`, mod, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to touch collection",
			slog.Int64("collection_id", id),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}
	return CheckRowsAffected(result, store.ErrCollectionNotFound)
}

// CreateDeckConfig inserts cfg and sets its ID.
func (s *PostgresCollectionStore) CreateDeckConfig(ctx context.Context, cfg *domain.DeckConfig) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	config := cfg.Config
	if len(config) == 0 {
		config = []byte(`{}`)
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO deck_configs (collection_id, name, mtime_secs, usn, config)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		cfg.CollectionID, cfg.Name, cfg.MtimeSecs, cfg.Usn, []byte(config),
	).Scan(&cfg.ID)
	if err != nil {
		log.Error("failed to insert deck config",
			slog.Int64("collection_id", cfg.CollectionID),
			slog.String("error", err.Error()))
		return MapError(err, nil)
	}

	log.Debug("deck config created", slog.Int64("deck_config_id", cfg.ID))
	return nil
}

// GetDeckConfig returns a config belonging to the collection.
func (s *PostgresCollectionStore) GetDeckConfig(ctx context.Context, collectionID, id int64) (*domain.DeckConfig, error) {
	return s.getDeckConfig(ctx, `
		SELECT id, collection_id, name, mtime_secs, usn, config
		FROM deck_configs WHERE collection_id = $1 AND id = $2`, collectionID, id)
}

// GetDefaultDeckConfig returns the collection's "Default" config, falling
// back to its oldest config.
func (s *PostgresCollectionStore) GetDefaultDeckConfig(ctx context.Context, collectionID int64) (*domain.DeckConfig, error) {
	return s.getDeckConfig(ctx, `
		SELECT id, collection_id, name, mtime_secs, usn, config
		FROM deck_configs WHERE collection_id = $1
		ORDER BY (name = $2) DESC, id ASC
		LIMIT 1`, collectionID, domain.DefaultDeckConfigName)
}

func (s *PostgresCollectionStore) getDeckConfig(ctx context.Context, query string, args ...interface{}) (*domain.DeckConfig, error) {
	var (
		c   domain.DeckConfig
		raw []byte
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.CollectionID, &c.Name, &c.MtimeSecs, &c.Usn, &raw,
	)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to fetch deck config",
				slog.String("error", err.Error()))
		}
		return nil, MapError(err, store.ErrDeckConfigNotFound)
	}
	c.Config = raw
	return &c, nil
}
