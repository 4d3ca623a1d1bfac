package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// MockCardStore implements store.CardStore on a MemoryDB.
type MockCardStore struct {
	failures
	db *MemoryDB
}

var _ store.CardStore = (*MockCardStore)(nil)

// Create implements store.CardStore.
func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := m.err("Create"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.notes[card.NoteID]; !ok {
		return store.ErrInvalidEntity
	}
	if _, ok := m.db.decks[card.DeckID]; !ok {
		return store.ErrInvalidEntity
	}
	card.ID = m.db.nextID()
	stored := *card
	m.db.cards[card.ID] = &stored
	return nil
}

// GetByID implements store.CardStore.
func (m *MockCardStore) GetByID(ctx context.Context, collectionID, id int64) (*domain.Card, error) {
	if err := m.err("GetByID"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	c, ok := m.db.cards[id]
	if !ok || !m.db.deckInCollection(c.DeckID, collectionID) {
		return nil, store.ErrCardNotFound
	}
	out := *c
	return &out, nil
}

// view must be called with mu held.
func (m *MockCardStore) view(c *domain.Card) store.CardView {
	v := store.CardView{Card: *c}
	if n, ok := m.db.notes[c.NoteID]; ok {
		v.Note = *n
	}
	if d, ok := m.db.decks[c.DeckID]; ok {
		v.DeckName = d.Name
	}
	return v
}

// GetView implements store.CardStore.
func (m *MockCardStore) GetView(ctx context.Context, collectionID, id int64) (*store.CardView, error) {
	if err := m.err("GetView"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	c, ok := m.db.cards[id]
	if !ok || !m.db.deckInCollection(c.DeckID, collectionID) {
		return nil, store.ErrCardNotFound
	}
	v := m.view(c)
	return &v, nil
}

// List implements store.CardStore with the same matching rules as the
// Postgres store: exact deck name, case-insensitive substring over all
// fields, and whole-tag matches.
func (m *MockCardStore) List(ctx context.Context, collectionID int64, filter store.CardFilter) ([]store.CardView, error) {
	if err := m.err("List"); err != nil {
		return nil, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	var out []store.CardView
	for _, c := range m.db.cards {
		if !m.db.deckInCollection(c.DeckID, collectionID) {
			continue
		}
		v := m.view(c)
		if filter.DeckName != "" && v.DeckName != filter.DeckName {
			continue
		}
		if filter.Type != nil && c.Type != *filter.Type {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(v.Note.Fields), query) {
			continue
		}
		if !hasTags(v.Note.Tags, filter.Tags) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Card.ID < out[j].Card.ID })
	return paginate(out, filter.Limit, filter.Offset), nil
}

func hasTags(stored string, tags []string) bool {
	stored = strings.ToLower(stored)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.Contains(stored, " "+strings.ToLower(tag)+" ") {
			return false
		}
	}
	return true
}

// MaxNewDue implements store.CardStore.
func (m *MockCardStore) MaxNewDue(ctx context.Context, deckID int64) (int64, error) {
	if err := m.err("MaxNewDue"); err != nil {
		return 0, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	var max int64
	for _, c := range m.db.cards {
		if c.DeckID == deckID && c.Type == domain.CardTypeNew && c.Due > max {
			max = c.Due
		}
	}
	return max, nil
}

// Update implements store.CardStore.
func (m *MockCardStore) Update(ctx context.Context, card *domain.Card) error {
	if err := m.err("Update"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	stored := *card
	m.db.cards[card.ID] = &stored
	return nil
}

// TouchByNote implements store.CardStore.
func (m *MockCardStore) TouchByNote(ctx context.Context, noteID int64, mod int64) error {
	if err := m.err("TouchByNote"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, c := range m.db.cards {
		if c.NoteID == noteID {
			c.Mod = mod
		}
	}
	return nil
}

// Delete implements store.CardStore.
func (m *MockCardStore) Delete(ctx context.Context, id int64) error {
	if err := m.err("Delete"); err != nil {
		return err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(m.db.cards, id)
	return nil
}

// WithTx returns the same store.
func (m *MockCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return m
}
