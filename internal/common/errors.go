// Package common defines the error taxonomy and small helpers shared by the
// credential store, its repositories and the terminal client. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Store setup errors. Both leave the store uninitialized.
	ErrConnection = errors.New("database connection failed")
	ErrSchema     = errors.New("database schema setup failed")

	// ErrInvalidInput is returned for a password that is not valid UTF-8 text.
	ErrInvalidInput = errors.New("invalid input")

	// Registration errors.
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	ErrRegistration   = errors.New("registration failed")

	// Authentication errors.
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStorage covers read failures that are neither "not found" nor a
	// credential mismatch.
	ErrStorage = errors.New("storage failure")
)
