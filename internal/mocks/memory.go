package mocks

import (
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
)

// MemoryDB is the shared state behind the in-memory stores. IDs come from
// one sequence so that they are unique across tables.
type MemoryDB struct {
	mu  sync.Mutex
	seq int64

	collections map[int64]*domain.Collection
	deckConfigs map[int64]*domain.DeckConfig
	decks       map[int64]*domain.Deck
	notetypes   map[int64]*domain.Notetype
	notes       map[int64]*domain.Note
	cards       map[int64]*domain.Card
	revlog      map[int64]*domain.RevLog
	highlights  map[uuid.UUID]*domain.Highlight
}

// NewMemoryDB returns an empty MemoryDB.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		collections: make(map[int64]*domain.Collection),
		deckConfigs: make(map[int64]*domain.DeckConfig),
		decks:       make(map[int64]*domain.Deck),
		notetypes:   make(map[int64]*domain.Notetype),
		notes:       make(map[int64]*domain.Note),
		cards:       make(map[int64]*domain.Card),
		revlog:      make(map[int64]*domain.RevLog),
		highlights:  make(map[uuid.UUID]*domain.Highlight),
	}
}

// nextID must be called with mu held.
func (db *MemoryDB) nextID() int64 {
	db.seq++
	return db.seq
}

// deckInCollection must be called with mu held.
func (db *MemoryDB) deckInCollection(deckID, collectionID int64) bool {
	d, ok := db.decks[deckID]
	return ok && d.CollectionID == collectionID
}

// failures injects errors into store methods by name.
type failures struct {
	mu   sync.Mutex
	errs map[string]error
}

// Fail makes every later call to method return err. A nil err clears it.
func (f *failures) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	if err == nil {
		delete(f.errs, method)
		return
	}
	f.errs[method] = err
}

func (f *failures) err(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[method]
}

// Stores bundles one in-memory implementation of every store interface.
type Stores struct {
	DB          *MemoryDB
	Users       *MockUserStore
	Collections *MockCollectionStore
	Decks       *MockDeckStore
	Notetypes   *MockNotetypeStore
	Notes       *MockNoteStore
	Cards       *MockCardStore
	RevLogs     *MockRevLogStore
	Highlights  *MockHighlightStore
}

// NewStores returns stores sharing a fresh MemoryDB.
func NewStores() *Stores {
	db := NewMemoryDB()
	return &Stores{
		DB:          db,
		Users:       NewMockUserStore(),
		Collections: &MockCollectionStore{db: db},
		Decks:       &MockDeckStore{db: db},
		Notetypes:   &MockNotetypeStore{db: db},
		Notes:       &MockNoteStore{db: db},
		Cards:       &MockCardStore{db: db},
		RevLogs:     &MockRevLogStore{db: db},
		Highlights:  &MockHighlightStore{db: db},
	}
}
