package mocks

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// MockHighlightStore implements store.HighlightStore on a MemoryDB.
type MockHighlightStore struct {
	failures
	db *MemoryDB
}

var _ store.HighlightStore = (*MockHighlightStore)(nil)

// Create implements store.HighlightStore.
func (m *MockHighlightStore) Create(ctx context.Context, h *domain.Highlight) error {
	if err := m.err("Create"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, exists := m.db.highlights[h.ID]; exists {
		return store.ErrDuplicate
	}
	stored := *h
	m.db.highlights[h.ID] = &stored
	return nil
}

// GetByID implements store.HighlightStore.
func (m *MockHighlightStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Highlight, error) {
	if err := m.err("GetByID"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	h, ok := m.db.highlights[id]
	if !ok {
		return nil, store.ErrHighlightNotFound
	}
	out := *h
	return &out, nil
}

// ListByUser implements store.HighlightStore.
func (m *MockHighlightStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Highlight, error) {
	if err := m.err("ListByUser"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	var out []*domain.Highlight
	for _, h := range m.db.highlights {
		if h.UserID == userID {
			c := *h
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

// UpdateStatus implements store.HighlightStore.
func (m *MockHighlightStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.HighlightStatus,
	cardCount int,
	errMsg string,
) error {
	if err := m.err("UpdateStatus"); err != nil {
		return err
	}
	if !status.Valid() {
		return domain.ErrInvalidHighlightStatus
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	h, ok := m.db.highlights[id]
	if !ok {
		return store.ErrHighlightNotFound
	}
	h.Status = status
	h.CardCount = cardCount
	h.ErrorMessage = errMsg
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// WithTx returns the same store.
func (m *MockHighlightStore) WithTx(tx *sql.Tx) store.HighlightStore {
	return m
}
