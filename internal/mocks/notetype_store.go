package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// MockNotetypeStore implements store.NotetypeStore on a MemoryDB.
type MockNotetypeStore struct {
	failures
	db *MemoryDB
}

var _ store.NotetypeStore = (*MockNotetypeStore)(nil)

// Create implements store.NotetypeStore.
func (m *MockNotetypeStore) Create(ctx context.Context, nt *domain.Notetype) error {
	if err := m.err("Create"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, existing := range m.db.notetypes {
		if existing.CollectionID == nt.CollectionID && existing.Name == nt.Name {
			return store.ErrDuplicate
		}
	}
	nt.ID = m.db.nextID()
	for i := range nt.Fields {
		nt.Fields[i].NotetypeID = nt.ID
	}
	for i := range nt.Templates {
		nt.Templates[i].NotetypeID = nt.ID
	}
	m.db.notetypes[nt.ID] = copyNotetype(nt)
	return nil
}

// GetByName implements store.NotetypeStore.
func (m *MockNotetypeStore) GetByName(ctx context.Context, collectionID int64, name string) (*domain.Notetype, error) {
	if err := m.err("GetByName"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, nt := range m.db.notetypes {
		if nt.CollectionID == collectionID && nt.Name == name {
			return copyNotetype(nt), nil
		}
	}
	return nil, store.ErrNotetypeNotFound
}

// List implements store.NotetypeStore.
func (m *MockNotetypeStore) List(ctx context.Context, collectionID int64) ([]*domain.Notetype, error) {
	if err := m.err("List"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	var out []*domain.Notetype
	for _, nt := range m.db.notetypes {
		if nt.CollectionID == collectionID {
			out = append(out, copyNotetype(nt))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// WithTx returns the same store.
func (m *MockNotetypeStore) WithTx(tx *sql.Tx) store.NotetypeStore {
	return m
}

func copyNotetype(nt *domain.Notetype) *domain.Notetype {
	out := *nt
	out.Fields = append([]domain.Field(nil), nt.Fields...)
	out.Templates = append([]domain.Template(nil), nt.Templates...)
	return &out
}
