package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
)

// UserStore defines the persistence operations for users.
type UserStore interface {
	// Create hashes user.Password, stores the user and clears the plaintext.
	// Returns ErrEmailExists when the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound when no user has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail matches case-insensitively and returns ErrUserNotFound on miss.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update rewrites the email, and the password hash when user.Password is set.
	Update(ctx context.Context, user *domain.User) error

	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) UserStore
}
