package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"quiz-result-service/internal/auth"
)

const (
	claimsKey       = "claims"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestID tags each request with an id, reusing the caller's if present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs every request with zap once it completes.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)),
		}

		switch {
		case status >= 500:
			log.Error("Server error", fields...)
		case status >= 400:
			log.Warn("Client error", fields...)
		default:
			log.Debug("Request processed", fields...)
		}
	}
}

// Recovery turns panics into a logged 500.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
		jsonError(c, http.StatusInternalServerError)
	})
}

// Authenticate requires a valid bearer token and stores its claims on the context.
func Authenticate(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			jsonError(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			jsonError(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			jsonError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok {
			jsonError(c, http.StatusUnauthorized)
			return
		}
		if !claims.IsAdmin() {
			jsonError(c, http.StatusForbidden, "Admin role required")
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
