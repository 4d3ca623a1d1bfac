package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/flashcard-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ServiceError
		expected string
	}{
		{
			name:     "wrapped error only",
			err:      NewServiceError("deck", "create", errors.New("boom")),
			expected: "deck service create operation failed: boom",
		},
		{
			name:     "public message and wrapped error",
			err:      newPublicError("card", "get", "Card with id=7 not found", store.ErrCardNotFound),
			expected: "card service get operation failed: Card with id=7 not found: entity not found: card",
		},
		{
			name:     "no wrapped error",
			err:      &ServiceError{Service: "user", Op: "create"},
			expected: "user service create operation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestServiceError_Unwrap(t *testing.T) {
	err := newPublicError("deck", "get", "Deck with id=1 not found", store.ErrDeckNotFound)

	assert.True(t, errors.Is(err, store.ErrDeckNotFound))
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.True(t, store.IsNotFoundError(fmt.Errorf("outer: %w", err)))
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		ok      bool
	}{
		{name: "nil", err: nil},
		{name: "plain error", err: errors.New("boom")},
		{name: "service error without message", err: NewServiceError("deck", "list", errors.New("boom"))},
		{
			name:    "direct",
			err:     newPublicError("user", "create", "Email already exists", store.ErrEmailExists),
			message: "Email already exists",
			ok:      true,
		},
		{
			name:    "wrapped",
			err:     fmt.Errorf("context: %w", newPublicError("deck", "get", "Deck with id=3 not found", nil)),
			message: "Deck with id=3 not found",
			ok:      true,
		},
		{
			name: "nested under a service error without message",
			err: NewServiceError("import", "save",
				newPublicError("card", "create", "No notetype found for Cloze", store.ErrNotetypeNotFound)),
			message: "No notetype found for Cloze",
			ok:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := PublicMessage(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		limit, offset   int
		wantLimit, want int
	}{
		{0, 0, DefaultPageSize, 0},
		{-5, -1, DefaultPageSize, 0},
		{10, 20, 10, 20},
		{MaxPageSize + 1, 0, MaxPageSize, 0},
	}
	for _, tt := range tests {
		limit, offset := NormalizePage(tt.limit, tt.offset)
		assert.Equal(t, tt.wantLimit, limit)
		assert.Equal(t, tt.want, offset)
	}
}

func TestModTime(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Unix(), modTime(now, 0))
	assert.Equal(t, now.Add(-2*time.Hour).Unix(), modTime(now, 120))
	assert.Equal(t, now.Add(90*time.Minute).Unix(), modTime(now, -90))
}

func TestGeneratedTags(t *testing.T) {
	assert.Equal(t, "ai-generated", generatedTags(nil))
	assert.Equal(t, "ai-generated go concurrency_patterns",
		generatedTags([]string{"go", " concurrency  patterns ", "", "AI-Generated"}))
}

func TestStoresRequire(t *testing.T) {
	err := Stores{}.require("decks")
	assert.ErrorIs(t, err, ErrMissingDependency)
	assert.Contains(t, err.Error(), "decks store")

	assert.NoError(t, Stores{}.require())
}
