package model

import "errors"

// Common errors used across the application
var (
	// ErrValidation marks rejected input: blank identities, malformed intervals
	ErrValidation = errors.New("validation failed")

	// ErrPersistence marks an I/O failure loading or saving settings
	ErrPersistence = errors.New("persistence failed")

	// Membership errors
	ErrNotFound      = errors.New("identity not found")
	ErrAlreadyExists = errors.New("identity already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session already closed")
)
