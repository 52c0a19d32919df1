package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authadapters "auth_backend/internal/feature/auth/adapters"
	authhandler "auth_backend/internal/feature/auth/transport/handler"
	"auth_backend/internal/feature/auth/transport/http/dto"
	authusecase "auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/http/handler"
	jwtmw "auth_backend/internal/platform/jwt"
	"auth_backend/internal/platform/logger"
	"auth_backend/internal/platform/password"
	"auth_backend/internal/shared/ratelimiter"
)

const testSecret = "router-test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T, ipLimit int) *gin.Engine {
	t.Helper()

	issuer, err := jwtmw.NewIssuer(testSecret, jwtmw.DefaultAccessTokenTTL)
	require.NoError(t, err)

	hasher := password.NewHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	uc := authusecase.NewAuthUsecase(authadapters.NewUserMemory(), hasher, issuer)

	return NewRouter(Deps{
		Auth:      authhandler.NewAuthHandler(uc, ratelimiter.NewRateLimiter(100, time.Minute)),
		Health:    handler.NewHealthHandler(nil),
		Verifier:  jwtmw.NewVerifier(testSecret),
		IPLimiter: ratelimiter.NewRateLimiter(ipLimit, time.Minute),
		Logger:    logger.Discard(),
	})
}

func doJSON(r *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_SignupSigninMe(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, 0)
	creds := `{"email":"user@example.com","password":"correct horse"}`

	// signup
	w := doJSON(r, http.MethodPost, "/auth/signup", creds, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var signup dto.TokenRes
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))
	assert.NotEmpty(t, signup.AccessToken)
	assert.Equal(t, "Bearer", signup.TokenType)
	assert.EqualValues(t, 900, signup.ExpiresIn)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// duplicate signup
	w = doJSON(r, http.MethodPost, "/auth/signup", creds, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// signin
	w = doJSON(r, http.MethodPost, "/auth/signin", creds, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var signin dto.TokenRes
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signin))
	assert.NotEqual(t, signup.AccessToken, signin.AccessToken)

	// wrong password and unknown email look the same
	wrong := doJSON(r, http.MethodPost, "/auth/signin", `{"email":"user@example.com","password":"wrong pass"}`, "")
	unknown := doJSON(r, http.MethodPost, "/auth/signin", `{"email":"nobody@example.com","password":"wrong pass"}`, "")
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())

	// me
	w = doJSON(r, http.MethodGet, "/users/me", "", signin.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var me dto.MeRes
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "user@example.com", me.Email)
	assert.NotZero(t, me.ID)
}

func TestRouter_MeRequiresToken(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, 0)

	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/users/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/users/me", "", "not-a-jwt").Code)
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, 0)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodHead, "/healthz", http.StatusOK},
		{http.MethodOptions, "/healthz", http.StatusNoContent},
		{http.MethodGet, "/readyz", http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, doJSON(r, tt.method, tt.path, "", "").Code)
		})
	}
}

func TestRouter_AuthRoutesRateLimitedPerIP(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, 2)
	body := `{"email":"a@example.com","password":"whatever1"}`

	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodPost, "/auth/signin", body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodPost, "/auth/signin", body, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(r, http.MethodPost, "/auth/signin", body, "").Code)

	// health is outside the limited group
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/healthz", "", "").Code)
}
