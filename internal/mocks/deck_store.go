package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// MockDeckStore implements store.DeckStore on a MemoryDB.
type MockDeckStore struct {
	failures
	db *MemoryDB
}

var _ store.DeckStore = (*MockDeckStore)(nil)

// nameTaken must be called with mu held.
func (m *MockDeckStore) nameTaken(collectionID int64, name string, except int64) bool {
	for _, d := range m.db.decks {
		if d.CollectionID == collectionID && d.Name == name && d.ID != except {
			return true
		}
	}
	return false
}

// Create implements store.DeckStore.
func (m *MockDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	if err := m.err("Create"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if m.nameTaken(deck.CollectionID, deck.Name, 0) {
		return store.ErrDeckNameExists
	}
	deck.ID = m.db.nextID()
	stored := *deck
	m.db.decks[deck.ID] = &stored
	return nil
}

// GetByID implements store.DeckStore.
func (m *MockDeckStore) GetByID(ctx context.Context, collectionID, id int64) (*domain.Deck, error) {
	if err := m.err("GetByID"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if !m.db.deckInCollection(id, collectionID) {
		return nil, store.ErrDeckNotFound
	}
	out := *m.db.decks[id]
	return &out, nil
}

// GetByName implements store.DeckStore.
func (m *MockDeckStore) GetByName(ctx context.Context, collectionID int64, name string) (*domain.Deck, error) {
	if err := m.err("GetByName"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, d := range m.db.decks {
		if d.CollectionID == collectionID && d.Name == name {
			out := *d
			return &out, nil
		}
	}
	return nil, store.ErrDeckNotFound
}

// List implements store.DeckStore.
func (m *MockDeckStore) List(ctx context.Context, collectionID int64, limit, offset int) ([]store.DeckSummary, error) {
	if err := m.err("List"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	var out []store.DeckSummary
	for _, d := range m.db.decks {
		if d.CollectionID != collectionID {
			continue
		}
		out = append(out, store.DeckSummary{Deck: *d, CardCount: m.countCards(d.ID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deck.Name < out[j].Deck.Name })
	return paginate(out, limit, offset), nil
}

// countCards must be called with mu held.
func (m *MockDeckStore) countCards(deckID int64) int {
	n := 0
	for _, c := range m.db.cards {
		if c.DeckID == deckID {
			n++
		}
	}
	return n
}

// CountCards implements store.DeckStore.
func (m *MockDeckStore) CountCards(ctx context.Context, deckID int64) (int, error) {
	if err := m.err("CountCards"); err != nil {
		return 0, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return m.countCards(deckID), nil
}

// Update implements store.DeckStore.
func (m *MockDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	if err := m.err("Update"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if !m.db.deckInCollection(deck.ID, deck.CollectionID) {
		return store.ErrDeckNotFound
	}
	if m.nameTaken(deck.CollectionID, deck.Name, deck.ID) {
		return store.ErrDeckNameExists
	}
	stored := *deck
	m.db.decks[deck.ID] = &stored
	return nil
}

// Delete implements store.DeckStore.
func (m *MockDeckStore) Delete(ctx context.Context, collectionID, id int64) (*store.DeckDeletion, error) {
	if err := m.err("Delete"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if !m.db.deckInCollection(id, collectionID) {
		return nil, store.ErrDeckNotFound
	}

	res := &store.DeckDeletion{}
	seen := make(map[int64]bool)
	for cid, c := range m.db.cards {
		if c.DeckID != id {
			continue
		}
		res.Cards++
		if !seen[c.NoteID] {
			seen[c.NoteID] = true
			res.NoteIDs = append(res.NoteIDs, c.NoteID)
		}
		delete(m.db.cards, cid)
	}
	sort.Slice(res.NoteIDs, func(i, j int) bool { return res.NoteIDs[i] < res.NoteIDs[j] })
	delete(m.db.decks, id)
	return res, nil
}

// WithTx returns the same store.
func (m *MockDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return m
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
