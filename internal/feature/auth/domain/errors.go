// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for authentication operations.
// Upper layers classify them with errors.Is; wrapped causes are for logs only.
var (
	// ErrInvalidCredentials indicates that signin failed.
	// It is returned both for an unknown email and for a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrCredentialsTaken indicates that signup hit a uniqueness constraint in the store.
	// It does not say which value collided.
	ErrCredentialsTaken = errors.New("credentials taken")

	// ErrInvalidInput indicates that a required signup field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrWeakPassword indicates that the password does not meet the minimum requirements.
	ErrWeakPassword = errors.New("password too weak")

	// ErrHashing indicates that the password hasher could not produce a hash,
	// typically because the randomness source failed. Not retryable.
	ErrHashing = errors.New("password hashing failed")

	// ErrSigning indicates that an access token could not be signed,
	// typically because the signing secret is missing. Not retryable.
	ErrSigning = errors.New("token signing failed")
)
