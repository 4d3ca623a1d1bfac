package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// MockRevLogStore implements store.RevLogStore on a MemoryDB.
type MockRevLogStore struct {
	failures
	db *MemoryDB
}

var _ store.RevLogStore = (*MockRevLogStore)(nil)

// Create implements store.RevLogStore.
func (m *MockRevLogStore) Create(ctx context.Context, entry *domain.RevLog) error {
	if err := m.err("Create"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.cards[entry.CardID]; !ok {
		return store.ErrInvalidEntity
	}
	entry.ID = m.db.nextID()
	stored := *entry
	m.db.revlog[entry.ID] = &stored
	return nil
}

// ListByCard implements store.RevLogStore.
func (m *MockRevLogStore) ListByCard(ctx context.Context, cardID int64) ([]domain.RevLog, error) {
	if err := m.err("ListByCard"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	var out []domain.RevLog
	for _, r := range m.db.revlog {
		if r.CardID == cardID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// WithTx returns the same store.
func (m *MockRevLogStore) WithTx(tx *sql.Tx) store.RevLogStore {
	return m
}
