// Package apperr defines sentinel errors shared across service layers.
package apperr

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a checksum precondition failed.
	ErrConflict = errors.New("conflict")
	// ErrAlreadyExists indicates a create would overwrite an existing document.
	ErrAlreadyExists = errors.New("already exists")
)
