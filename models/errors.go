package models

import "errors"

var (
	// ErrNotFound covers both a missing record and one the caller may not see.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique field is already taken.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials is the single answer for unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated is returned when an operation needs a signed-in user.
	ErrUnauthenticated = errors.New("not logged in")
)
