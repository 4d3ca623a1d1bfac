package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/flashcard-api/internal/generation"
)

// errNoCandidates is wrapped in generation.ErrInvalidResponse.
var errNoCandidates = errors.New("no candidates in response")

// isPermanent reports whether err should stop the retry loop.
func isPermanent(err error) bool {
	return errors.Is(err, generation.ErrContentBlocked) ||
		errors.Is(err, generation.ErrInvalidResponse) ||
		errors.Is(err, context.Canceled)
}

func invalidResponse(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", generation.ErrInvalidResponse, fmt.Sprintf(format, args...))
}
