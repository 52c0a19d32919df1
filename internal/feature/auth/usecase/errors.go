// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

// Repository-level errors. Adapters return these so the usecase can classify
// storage failures without knowing the storage engine.
var (
	// ErrUserNotFound is returned when a user cannot be found by email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when a create violates a uniqueness constraint.
	ErrEmailAlreadyExists = errors.New("email already exists")
)
