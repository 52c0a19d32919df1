// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/transport/http/dto"
	jwtmw "auth_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は新規ユーザーを登録し、アクセストークンを返します。
	Signup(ctx context.Context, email, password string) (entity.Token, error)
	// Signin はユーザーを認証し、成功時にアクセストークンを返します。
	Signin(ctx context.Context, email, password string) (entity.Token, error)
}

// AttemptLimiter はサインイン試行回数を制限します。
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth    AuthUsecase
	limiter AttemptLimiter
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// limiterがnilの場合、メールアドレス単位の試行制限は行いません。
func NewAuthHandler(auth AuthUsecase, limiter AttemptLimiter) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 資格情報が既に使用されている場合は403を返却
// - 成功時はアクセストークン付きで201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}

	token, err := h.auth.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, "signup", req.Email, err)
		return
	}
	slog.Info("user signup successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, toTokenRes(token))
}

// Signin はサインインAPIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 試行回数超過時は429を返却
// - 認証失敗時は401を返却
// - 認証成功時はアクセストークン付きで200を返却
func (h *AuthHandler) Signin(c *gin.Context) {
	var req dto.SigninReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signin validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}

	if !h.allow(c, "signin:"+strings.ToLower(strings.TrimSpace(req.Email))) {
		slog.Warn("signin rate limited", "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusTooManyRequests, dto.ErrorRes{Error: "too many attempts"})
		return
	}

	token, err := h.auth.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, "signin", req.Email, err)
		return
	}
	slog.Info("user signin successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, toTokenRes(token))
}

// Me は認証済みユーザーの情報を返します。AuthRequiredミドルウェアの後段で使用します。
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := c.Get(jwtmw.ContextUserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "unauthorized"})
		return
	}
	userID, _ := id.(uint)
	c.JSON(http.StatusOK, dto.MeRes{ID: userID, Email: c.GetString(jwtmw.ContextEmail)})
}

// allow はリミッターに問い合わせます。リミッターの障害時はフェイルオープンします。
func (h *AuthHandler) allow(c *gin.Context, key string) bool {
	if h.limiter == nil {
		return true
	}
	ok, err := h.limiter.Allow(c.Request.Context(), key)
	if err != nil {
		slog.Warn("attempt limiter unavailable", "error", err)
		return true
	}
	return ok
}

// writeError はドメインエラーをHTTPステータスに変換します。
// ユーザー列挙攻撃を防止するため、内部エラーの詳細は公開しません。
func (h *AuthHandler) writeError(c *gin.Context, op, email string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrWeakPassword):
		slog.Warn(op+" rejected", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: publicMessage(err)})
	case errors.Is(err, domain.ErrCredentialsTaken):
		slog.Warn(op+" failed", "error", err, "email", email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusForbidden, dto.ErrorRes{Error: domain.ErrCredentialsTaken.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		slog.Warn(op+" failed", "error", err, "email", email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: domain.ErrInvalidCredentials.Error()})
	default:
		slog.Error(op+" internal error", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "internal server error"})
	}
}

func publicMessage(err error) string {
	if errors.Is(err, domain.ErrWeakPassword) {
		return domain.ErrWeakPassword.Error()
	}
	return "invalid request"
}

func toTokenRes(t entity.Token) dto.TokenRes {
	return dto.TokenRes{
		AccessToken: t.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(t.ExpiresIn.Seconds()),
	}
}
