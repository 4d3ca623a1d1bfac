package mocks

import (
	"errors"
	"sync"
)

// ErrPasswordMismatch is returned by MockPasswordVerifier when a comparison fails.
var ErrPasswordMismatch = errors.New("password mismatch")

// CompareCall records the arguments of one Compare call.
type CompareCall struct {
	HashedPassword string
	Password       string
}

// MockPasswordVerifier implements auth.PasswordVerifier. CompareFn wins when
// set; otherwise ShouldSucceed decides the outcome.
type MockPasswordVerifier struct {
	ShouldSucceed bool
	CompareFn     func(hashedPassword, password string) error

	mu    sync.Mutex
	calls []CompareCall
}

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.mu.Lock()
	m.calls = append(m.calls, CompareCall{HashedPassword: hashedPassword, Password: password})
	m.mu.Unlock()

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return ErrPasswordMismatch
}

// Calls returns the recorded Compare calls in order.
func (m *MockPasswordVerifier) Calls() []CompareCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompareCall(nil), m.calls...)
}
