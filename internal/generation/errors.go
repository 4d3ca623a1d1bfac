package generation

import "errors"

// Errors returned by Generator implementations.
var (
	// ErrGenerationFailed is returned when generation fails for a reason not covered below.
	ErrGenerationFailed = errors.New("failed to generate cards from text")

	// ErrInvalidResponse is returned when the model response cannot be parsed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model's safety filters reject the content.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for errors that may succeed on retry.
	ErrTransientFailure = errors.New("transient error during card generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrEmptyText is returned when there is no text to generate from.
	ErrEmptyText = errors.New("text cannot be empty")
)
