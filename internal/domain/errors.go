package domain

import "errors"

var (
	// ErrNotFound is returned when a catalog item does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when payload validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable is returned when the document store cannot be reached
	// or a store call exceeds its deadline. Callers may retry.
	ErrUnavailable = errors.New("store unavailable")
)
