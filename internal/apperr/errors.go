// Package apperr defines the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidRange  = errors.New("invalid range")
	ErrInvalid       = errors.New("invalid input")
	ErrClosed        = errors.New("session closed")
)
