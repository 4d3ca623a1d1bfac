package mocks

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/flashcard-api/internal/domain"
	"github.com/phrazzld/flashcard-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateFn     func(ctx context.Context, user *domain.User) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation, keyed by lower-cased email
	mu              sync.Mutex
	Users           map[string]*domain.User
	LastUserID      uuid.UUID
	CreateError     error
	GetByEmailError error
}

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[string]*domain.User),
	}
}

// FakeHash is the hash the mock store records for password.
func FakeHash(password string) string {
	return "hashed:" + password
}

// Create implements the UserStore interface. The plaintext password is
// replaced by FakeHash(password) the way the real store hashes it.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := m.Users[key]; exists {
		return store.ErrEmailExists
	}
	if user.Password != "" {
		user.HashedPassword = FakeHash(user.Password)
		user.Password = ""
	}

	stored := *user
	m.Users[key] = &stored
	m.LastUserID = user.ID
	return nil
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	if m.GetByEmailError != nil {
		return nil, m.GetByEmailError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.Users[strings.ToLower(strings.TrimSpace(email))]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.Users {
		if user.ID == id {
			out := *user
			return &out, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, existing := range m.Users {
		if existing.ID != user.ID {
			continue
		}
		newKey := strings.ToLower(user.Email)
		if newKey != key {
			if _, taken := m.Users[newKey]; taken {
				return store.ErrEmailExists
			}
			delete(m.Users, key)
		}
		stored := *user
		if stored.Password != "" {
			stored.HashedPassword = FakeHash(stored.Password)
			stored.Password = ""
		} else {
			stored.HashedPassword = existing.HashedPassword
		}
		m.Users[newKey] = &stored
		return nil
	}
	return store.ErrUserNotFound
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, user := range m.Users {
		if user.ID == id {
			delete(m.Users, key)
			return nil
		}
	}
	return store.ErrUserNotFound
}

// WithTx returns the same mock; the mock has no transactional state.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
