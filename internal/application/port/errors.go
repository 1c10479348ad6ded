package port

import "errors"

var (
	// ErrNotFound is returned when a letter, disposition or user does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a conditional status update matched no
	// row (the letter changed concurrently) or when mutating a disposition
	// that already reached a final status
	ErrConflict = errors.New("conflicting concurrent modification")

	// ErrTimeout is returned when a store call exceeded the caller's deadline
	ErrTimeout = errors.New("store call timed out")
)
