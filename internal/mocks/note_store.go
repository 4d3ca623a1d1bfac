package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// MockNoteStore implements store.NoteStore on a MemoryDB.
type MockNoteStore struct {
	failures
	db *MemoryDB
}

var _ store.NoteStore = (*MockNoteStore)(nil)

// Create implements store.NoteStore.
func (m *MockNoteStore) Create(ctx context.Context, note *domain.Note) error {
	if err := m.err("Create"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.notetypes[note.NotetypeID]; !ok {
		return store.ErrInvalidEntity
	}
	note.ID = m.db.nextID()
	stored := *note
	m.db.notes[note.ID] = &stored
	return nil
}

// GetByID implements store.NoteStore.
func (m *MockNoteStore) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	if err := m.err("GetByID"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	n, ok := m.db.notes[id]
	if !ok {
		return nil, store.ErrNoteNotFound
	}
	out := *n
	return &out, nil
}

// ExistsBySortField implements store.NoteStore.
func (m *MockNoteStore) ExistsBySortField(
	ctx context.Context,
	notetypeID int64,
	csum int64,
	sortField string,
) (bool, error) {
	if err := m.err("ExistsBySortField"); err != nil {
		return false, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, n := range m.db.notes {
		if n.NotetypeID == notetypeID && n.Csum == csum && n.SortField == sortField {
			return true, nil
		}
	}
	return false, nil
}

// Update implements store.NoteStore.
func (m *MockNoteStore) Update(ctx context.Context, note *domain.Note) error {
	if err := m.err("Update"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.notes[note.ID]; !ok {
		return store.ErrNoteNotFound
	}
	stored := *note
	m.db.notes[note.ID] = &stored
	return nil
}

// DeleteOrphans implements store.NoteStore.
func (m *MockNoteStore) DeleteOrphans(ctx context.Context, ids []int64) (int, error) {
	if err := m.err("DeleteOrphans"); err != nil {
		return 0, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	removed := 0
	for _, id := range ids {
		if _, ok := m.db.notes[id]; !ok {
			continue
		}
		orphan := true
		for _, c := range m.db.cards {
			if c.NoteID == id {
				orphan = false
				break
			}
		}
		if orphan {
			delete(m.db.notes, id)
			removed++
		}
	}
	return removed, nil
}

// WithTx returns the same store.
func (m *MockNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return m
}
