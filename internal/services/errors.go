package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks errors caused by caller supplied data
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks errors for missing media items, sessions, candidates or files
	ErrNotFound = errors.New("not found")
	// ErrUploadOrder is returned for a chunk that is neither the expected one nor a repeat of the previous one
	ErrUploadOrder = errors.New("chunk out of order")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
