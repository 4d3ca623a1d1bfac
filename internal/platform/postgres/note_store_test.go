package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresNoteStore_Create(t *testing.T) {
	t.Parallel()

	note, err := domain.NewNote(1, []string{"hola", "hello"}, "greetings", 100)
	require.NoError(t, err)

	t.Run("inserts", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresNoteStore(db, discardLogger())
		n := *note

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notes")).
			WithArgs(n.GUID, int64(1), int64(100), 0, " greetings ", "hola\x1fhello", "hola", n.Csum, 0, "").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

		require.NoError(t, s.Create(context.Background(), &n))
		assert.Equal(t, int64(5), n.ID)
	})

	t.Run("duplicate guid", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresNoteStore(db, discardLogger())
		n := *note

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notes")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		assert.ErrorIs(t, s.Create(context.Background(), &n), store.ErrDuplicateNote)
	})
}

func TestPostgresNoteStore_ExistsBySortField(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresNoteStore(db, discardLogger())

	csum := domain.FieldChecksum("hola")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(1), csum, "hola").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.ExistsBySortField(context.Background(), 1, csum, "hola")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPostgresNoteStore_Update(t *testing.T) {
	t.Parallel()

	note, err := domain.NewNote(1, []string{"hola", "hello"}, "", 100)
	require.NoError(t, err)
	note.ID = 7

	tests := []struct {
		name    string
		result  driver.Result
		err     error
		wantErr error
	}{
		{name: "updates", result: sqlmock.NewResult(0, 1)},
		{name: "missing note", result: sqlmock.NewResult(0, 0), wantErr: store.ErrNoteNotFound},
		{name: "sort field taken", err: &pgconn.PgError{Code: uniqueViolationCode}, wantErr: store.ErrDuplicateNote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db, mock := newMock(t)
			s := NewPostgresNoteStore(db, discardLogger())
			n := *note

			exp := mock.ExpectExec(regexp.QuoteMeta("UPDATE notes")).
				WithArgs(int64(100), 0, "", "hola\x1fhello", "hola", n.Csum, int64(7))
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := s.Update(context.Background(), &n)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPostgresNoteStore_DeleteOrphans(t *testing.T) {
	t.Parallel()

	t.Run("no ids skips the query", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)
		s := NewPostgresNoteStore(db, discardLogger())

		n, err := s.DeleteOrphans(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("deletes cardless notes", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresNoteStore(db, discardLogger())

		mock.ExpectExec(regexp.QuoteMeta("WHERE n.id = ANY($1)")).
			WithArgs([]int64{7, 8}).
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := s.DeleteOrphans(context.Background(), []int64{7, 8})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
