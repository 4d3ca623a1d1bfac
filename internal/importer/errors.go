package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is wrapped by FormatError.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge is returned for uploads over MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidPackage is returned for Anki packages that cannot be read.
	ErrInvalidPackage = errors.New("invalid Anki package")
)

// FormatError reports a file whose extension has no parser.
type FormatError struct {
	Filename string
	Expected string
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("Invalid or unsupported file format: '%s'", e.Filename)
	if e.Expected != "" {
		msg += ". Expected: " + e.Expected
	}
	return msg
}

func (e *FormatError) Unwrap() error { return ErrUnsupportedFormat }

// PackageError reports a problem reading an Anki package or its database.
type PackageError struct {
	Msg string
	Err error
}

func (e *PackageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *PackageError) Unwrap() error { return ErrInvalidPackage }
