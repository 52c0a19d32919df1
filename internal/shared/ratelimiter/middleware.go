package ratelimiter

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PerClientIP returns a Gin middleware that limits requests per client IP.
// scope separates counters of different route groups. A nil limiter or a
// limiter error lets the request through.
func PerClientIP(l Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		ok, err := l.Allow(c.Request.Context(), scope+"-ip:"+c.ClientIP())
		if err != nil {
			slog.Warn("rate limiter unavailable", "scope", scope, "error", err)
			c.Next()
			return
		}
		if !ok {
			slog.Warn("rate limit exceeded", "scope", scope, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
			return
		}
		c.Next()
	}
}
