// Package router はHTTPルーティングを組み立てます。
package router

import (
	"log/slog"

	authhandler "auth_backend/internal/feature/auth/transport/handler"
	"auth_backend/internal/platform/http/handler"
	"auth_backend/internal/platform/http/middleware"
	jwtmw "auth_backend/internal/platform/jwt"
	"auth_backend/internal/shared/ratelimiter"

	"github.com/gin-gonic/gin"
)

// Deps はルーターが必要とするハンドラーとミドルウェアの依存です。
type Deps struct {
	Auth     *authhandler.AuthHandler
	Health   *handler.HealthHandler
	Verifier *jwtmw.Verifier
	// IPLimiter はnilの場合、IP単位の制限を行いません。
	IPLimiter ratelimiter.Limiter
	Logger    *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(d.Logger))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", d.Health.Live)
	r.HEAD("/healthz", d.Health.Live)
	r.OPTIONS("/healthz", d.Health.Live)
	r.GET("/readyz", d.Health.Ready)

	auth := r.Group("/auth")
	auth.Use(ratelimiter.PerClientIP(d.IPLimiter, "auth"))
	{
		// 新規ユーザー登録
		auth.POST("/signup", d.Auth.Signup)
		// ログイン（JWT 発行）
		auth.POST("/signin", d.Auth.Signin)
	}

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	users := r.Group("/users")
	users.Use(jwtmw.AuthRequired(d.Verifier))
	{
		users.GET("/me", d.Auth.Me)
	}

	return r
}
