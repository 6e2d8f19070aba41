package errors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid prompt input")
	ErrInvalidStatus       = errors.New("invalid prompt status")
	ErrPromptNotFound      = errors.New("prompt not found")
	ErrUnauthorized        = errors.New("caller may not modify this prompt")
	ErrForbiddenTransition = errors.New("creator may only request deletion")
	ErrAdminOnly           = errors.New("operation requires admin role")
)
