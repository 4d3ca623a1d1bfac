package service

import (
	"errors"
	"fmt"
)

// Common service errors.
var (
	// ErrNoUpdateFields is returned when an update request names no field to change.
	// API layer should map this to HTTP 400 Bad Request.
	ErrNoUpdateFields = errors.New("no fields to update")

	// ErrMissingDependency is returned by constructors given a nil store.
	ErrMissingDependency = errors.New("missing dependency")
)

// ServiceError adds the failing service and operation to an error. Message,
// when set, is safe to return to API clients verbatim.
type ServiceError struct {
	Service string
	Op      string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err without a public message.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Err: err}
}

// newPublicError wraps err with a message meant for API clients.
func newPublicError(service, op, message string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Message: message, Err: err}
}

// PublicMessage returns the client-facing message carried by the first
// ServiceError in err's chain that has one.
func PublicMessage(err error) (string, bool) {
	for err != nil {
		var se *ServiceError
		if !errors.As(err, &se) {
			return "", false
		}
		if se.Message != "" {
			return se.Message, true
		}
		err = se.Err
	}
	return "", false
}
