package service_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/mocks"
	"github.com/phrazzld/flashcard-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery"

// testEnv runs services against the in-memory stores. Transactions go
// through sqlmock, so each test declares the transactions it expects.
type testEnv struct {
	t      *testing.T
	ctx    context.Context
	db     *sql.DB
	sql    sqlmock.Sqlmock
	mem    *mocks.Stores
	stores service.Stores
	logger *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		_ = db.Close()
	})

	mem := mocks.NewStores()
	return &testEnv{
		t:   t,
		ctx: context.Background(),
		db:  db,
		sql: sqlMock,
		mem: mem,
		stores: service.Stores{
			Users:       mem.Users,
			Collections: mem.Collections,
			Decks:       mem.Decks,
			Notetypes:   mem.Notetypes,
			Notes:       mem.Notes,
			Cards:       mem.Cards,
			RevLogs:     mem.RevLogs,
			Highlights:  mem.Highlights,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (e *testEnv) expectCommit(n int) {
	for i := 0; i < n; i++ {
		e.sql.ExpectBegin()
		e.sql.ExpectCommit()
	}
}

func (e *testEnv) expectRollback() {
	e.sql.ExpectBegin()
	e.sql.ExpectRollback()
}

func (e *testEnv) users() service.UserService {
	svc, err := service.NewUserService(e.db, e.stores, e.logger)
	require.NoError(e.t, err)
	return svc
}

func (e *testEnv) decks() service.DeckService {
	svc, err := service.NewDeckService(e.db, e.stores, e.logger)
	require.NoError(e.t, err)
	return svc
}

func (e *testEnv) cards() service.CardService {
	svc, err := service.NewCardService(e.db, e.stores, e.logger)
	require.NoError(e.t, err)
	return svc
}

// register creates a user with a seeded collection.
func (e *testEnv) register(email string) uuid.UUID {
	e.t.Helper()
	e.expectCommit(1)
	user, err := e.users().CreateUser(e.ctx, email, testPassword)
	require.NoError(e.t, err)
	return user.ID
}

// createDeck adds a deck for userID using the default config.
func (e *testEnv) createDeck(userID uuid.UUID, name string) int64 {
	e.t.Helper()
	e.expectCommit(1)
	deck, err := e.decks().CreateDeck(e.ctx, userID, name, nil)
	require.NoError(e.t, err)
	return deck.ID
}

// createCard adds a Basic note to deck and returns its card.
func (e *testEnv) createCard(userID uuid.UUID, deck, front, back, tags string) int64 {
	e.t.Helper()
	e.expectCommit(1)
	created, err := e.cards().CreateCard(e.ctx, userID, service.CreateCardParams{
		DeckName: deck,
		Front:    front,
		Back:     back,
		Tags:     tags,
	})
	require.NoError(e.t, err)
	require.Len(e.t, created.Cards, 1)
	return created.Cards[0].ID
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
