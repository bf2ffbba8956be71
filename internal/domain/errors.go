package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrProviderFailure     = errors.New("provider failure")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrDuplicateOperation  = errors.New("duplicate operation")
)
