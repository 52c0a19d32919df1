// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user as seen outside the verification path.
// It intentionally has no password hash field.
type User struct {
	// ID is the unique identifier for the user.
	ID uint

	// Email is the user's normalised email address. It is unique across all users.
	Email string

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time
}

// Credential is the projection of a stored user needed to verify a password.
// It is produced only by the credential store's lookup and consumed only by signin.
type Credential struct {
	UserID       uint
	Email        string
	PasswordHash string
}

// Token is a signed access token issued after signup or signin.
type Token struct {
	// AccessToken is the compact JWS string.
	AccessToken string

	// ExpiresIn is the lifetime of the token from the moment it was issued.
	ExpiresIn time.Duration
}
