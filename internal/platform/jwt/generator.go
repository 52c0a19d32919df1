package jwtmw

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/feature/auth/domain/entity"
)

// EnvKeyJWTSecret is the environment variable holding the HMAC signing secret.
const EnvKeyJWTSecret = "JWT_SECRET"

// DefaultAccessTokenTTL is the lifetime of an access token when none is configured.
const DefaultAccessTokenTTL = 15 * time.Minute

// Claims is the payload of an access token.
// Subject carries the decimal user ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into a user ID.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, err)
	}
	return uint(id), nil
}

// Issuer signs access tokens with HS256.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. An empty secret is a configuration error and
// is reported as domain.ErrSigning so it surfaces at startup.
// A non-positive ttl falls back to DefaultAccessTokenTTL.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: %s is not set", domain.ErrSigning, EnvKeyJWTSecret)
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// IssueToken creates a signed token for the given user.
// Every token gets a unique ID, so two tokens for the same user never collide.
func (i *Issuer) IssueToken(userID uint, email string) (entity.Token, error) {
	if len(i.secret) == 0 {
		return entity.Token{}, fmt.Errorf("%w: empty secret", domain.ErrSigning)
	}

	now := i.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return entity.Token{}, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}

	return entity.Token{AccessToken: signed, ExpiresIn: i.ttl}, nil
}
