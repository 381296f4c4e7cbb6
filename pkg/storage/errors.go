package storage

import "errors"

// Failure taxonomy surfaced by every Store operation. The API layer maps
// these onto HTTP statuses; anything else is an internal storage error.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
)
