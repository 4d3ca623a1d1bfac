package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// MockCollectionStore implements store.CollectionStore on a MemoryDB.
type MockCollectionStore struct {
	failures
	db *MemoryDB
}

var _ store.CollectionStore = (*MockCollectionStore)(nil)

// Create implements store.CollectionStore.
func (m *MockCollectionStore) Create(ctx context.Context, col *domain.Collection) error {
	if err := m.err("Create"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, c := range m.db.collections {
		if c.UserID == col.UserID {
			return store.ErrDuplicate
		}
	}
	col.ID = m.db.nextID()
	stored := *col
	m.db.collections[col.ID] = &stored
	return nil
}

// GetByUserID implements store.CollectionStore.
func (m *MockCollectionStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Collection, error) {
	if err := m.err("GetByUserID"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, c := range m.db.collections {
		if c.UserID == userID {
			out := *c
			return &out, nil
		}
	}
	return nil, store.ErrCollectionNotFound
}

// Touch implements store.CollectionStore.
func (m *MockCollectionStore) Touch(ctx context.Context, id int64, mod int64) error {
	if err := m.err("Touch"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	c, ok := m.db.collections[id]
	if !ok {
		return store.ErrCollectionNotFound
	}
	c.Mod = mod
	return nil
}

// CreateDeckConfig implements store.CollectionStore.
func (m *MockCollectionStore) CreateDeckConfig(ctx context.Context, cfg *domain.DeckConfig) error {
	if err := m.err("CreateDeckConfig"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.collections[cfg.CollectionID]; !ok {
		return store.ErrInvalidEntity
	}
	cfg.ID = m.db.nextID()
	stored := *cfg
	m.db.deckConfigs[cfg.ID] = &stored
	return nil
}

// GetDeckConfig implements store.CollectionStore.
func (m *MockCollectionStore) GetDeckConfig(ctx context.Context, collectionID, id int64) (*domain.DeckConfig, error) {
	if err := m.err("GetDeckConfig"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	cfg, ok := m.db.deckConfigs[id]
	if !ok || cfg.CollectionID != collectionID {
		return nil, store.ErrDeckConfigNotFound
	}
	out := *cfg
	return &out, nil
}

// GetDefaultDeckConfig implements store.CollectionStore.
func (m *MockCollectionStore) GetDefaultDeckConfig(ctx context.Context, collectionID int64) (*domain.DeckConfig, error) {
	if err := m.err("GetDefaultDeckConfig"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	var oldest *domain.DeckConfig
	for _, cfg := range m.db.deckConfigs {
		if cfg.CollectionID == collectionID && (oldest == nil || cfg.ID < oldest.ID) {
			oldest = cfg
		}
	}
	if oldest == nil {
		return nil, store.ErrDeckConfigNotFound
	}
	out := *oldest
	return &out, nil
}

// WithTx returns the same store.
func (m *MockCollectionStore) WithTx(tx *sql.Tx) store.CollectionStore {
	return m
}
