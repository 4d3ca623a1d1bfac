package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store or is not visible to the caller's collection.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a uniqueness
	// constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation or
	// references a row that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update matched no rows.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete matched no rows.
	ErrDeleteFailed = errors.New("delete failed")

	// Entity-specific "not found" errors
	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrCollectionNotFound = fmt.Errorf("%w: collection", ErrNotFound)
	ErrDeckConfigNotFound = fmt.Errorf("%w: deck config", ErrNotFound)
	ErrDeckNotFound       = fmt.Errorf("%w: deck", ErrNotFound)
	ErrNotetypeNotFound   = fmt.Errorf("%w: notetype", ErrNotFound)
	ErrNoteNotFound       = fmt.Errorf("%w: note", ErrNotFound)
	ErrCardNotFound       = fmt.Errorf("%w: card", ErrNotFound)
	ErrHighlightNotFound  = fmt.Errorf("%w: highlight", ErrNotFound)

	// Entity-specific "duplicate" errors
	ErrEmailExists    = fmt.Errorf("%w: email", ErrDuplicate)
	ErrDeckNameExists = fmt.Errorf("%w: deck name", ErrDuplicate)
	ErrDuplicateNote  = fmt.Errorf("%w: note", ErrDuplicate)
)

// IsNotFoundError reports whether err is any kind of "not found" error.
// Entity-specific errors wrap ErrNotFound, so a single check suffices.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "deck", "card")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
