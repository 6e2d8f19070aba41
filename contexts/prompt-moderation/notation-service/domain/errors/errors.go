// Package errors defines the sentinel errors of the notation service.
package errors

import "errors"

var (
	// ErrInvalidInput signals a missing or blank prompt id.
	ErrInvalidInput = errors.New("notation: invalid input")

	// ErrPromptNotFound signals that the prompt does not exist.
	ErrPromptNotFound = errors.New("notation: prompt not found")

	// ErrPromptNotActive signals that notation is undefined for the prompt's
	// current status.
	ErrPromptNotActive = errors.New("notation: prompt not active")
)
