package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPostgresUserStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("hashes and inserts", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

		user, err := domain.NewUser("alice@example.com", "correct horse battery")
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID, "alice@example.com", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), user))
		assert.Empty(t, user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("correct horse battery")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

		user, err := domain.NewUser("alice@example.com", "correct horse battery")
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_lower_key"})

		assert.ErrorIs(t, s.Create(context.Background(), user), store.ErrEmailExists)
	})

	t.Run("invalid user never reaches the database", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

		err := s.Create(context.Background(), &domain.User{ID: uuid.New(), Email: "nope", Password: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

func TestPostgresUserStore_GetByEmail(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

		id := uuid.New()
		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1)")).
			WithArgs("Alice@Example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "hashed_password", "created_at", "updated_at"}).
				AddRow(id, "alice@example.com", "hash", now, now))

		u, err := s.GetByEmail(context.Background(), " Alice@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, "hash", u.HashedPassword)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())

		mock.ExpectQuery("FROM users").WillReturnError(sql.ErrNoRows)

		_, err := s.GetByEmail(context.Background(), "bob@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestPostgresUserStore_Delete(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, discardLogger())
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), id), store.ErrUserNotFound)
}

func TestNewPostgresUserStore_Panics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewPostgresUserStore(nil, 10, nil) })
}
