package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"auth_backend/internal/feature/auth/adapters"
	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/feature/auth/usecase"
	jwtmw "auth_backend/internal/platform/jwt"
	"auth_backend/internal/platform/password"
)

const flowSecret = "flow-test-secret"

// TestAuthFlow wires the real hasher, token issuer and in-memory store.
func TestAuthFlow(t *testing.T) {
	t.Parallel()

	issuer, err := jwtmw.NewIssuer(flowSecret, jwtmw.DefaultAccessTokenTTL)
	require.NoError(t, err)
	verifier := jwtmw.NewVerifier(flowSecret)
	hasher := password.NewHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1})
	users := adapters.NewUserMemory()
	uc := usecase.NewAuthUsecase(users, hasher, issuer)
	ctx := context.Background()

	t1, err := uc.Signup(ctx, "Alice@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, jwtmw.DefaultAccessTokenTTL, t1.ExpiresIn)

	t2, err := uc.Signin(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, t1.AccessToken, t2.AccessToken)

	c1, err := verifier.Verify(t1.AccessToken)
	require.NoError(t, err)
	c2, err := verifier.Verify(t2.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, c1.Subject, c2.Subject)
	assert.Equal(t, "alice@example.com", c1.Email)
	assert.Equal(t, c1.Email, c2.Email)

	// stored hash is argon2id, never the plaintext
	cred, err := users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotContains(t, cred.PasswordHash, "s3cret-pass")
	assert.True(t, hasher.Verify(cred.PasswordHash, "s3cret-pass"))

	_, err = uc.Signup(ctx, "alice@example.com", "another-pass")
	assert.ErrorIs(t, err, domain.ErrCredentialsTaken)
	assert.Equal(t, 1, users.Len())

	_, errWrong := uc.Signin(ctx, "alice@example.com", "wrong-pass")
	_, errUnknown := uc.Signin(ctx, "bob@example.com", "wrong-pass")
	assert.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestAuthFlow_UpgradesLegacyHash(t *testing.T) {
	t.Parallel()

	issuer, err := jwtmw.NewIssuer(flowSecret, jwtmw.DefaultAccessTokenTTL)
	require.NoError(t, err)
	hasher := password.NewHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1})
	users := adapters.NewUserMemory()
	uc := usecase.NewAuthUsecase(users, hasher, issuer)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("old-pass-123"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = users.Create(ctx, "legacy@example.com", string(legacy))
	require.NoError(t, err)

	_, err = uc.Signin(ctx, "legacy@example.com", "old-pass-123")
	require.NoError(t, err)

	cred, err := users.FindByEmail(ctx, "legacy@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cred.PasswordHash, "$argon2id$"))
	assert.False(t, hasher.NeedsRehash(cred.PasswordHash))

	// upgraded hash still accepts the same password
	_, err = uc.Signin(ctx, "legacy@example.com", "old-pass-123")
	assert.NoError(t, err)
}
