package middleware

import (
	"net/http"
	"strings"
	"time"

	entity "game-exchange/internal/domain"
	"game-exchange/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const callerKey = "user_id"

// TokenValidator resolves a bearer token to its claims.
type TokenValidator interface {
	ValidateToken(token string) (*entity.JWTClaims, error)
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"message": msg, "code": code}})
}

func AuthRequired(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			abort(c, http.StatusUnauthorized, "unauthenticated", "missing token")
			return
		}

		parts := strings.Fields(auth)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, http.StatusUnauthorized, "unauthenticated", "invalid token format")
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
			return
		}

		c.Set(callerKey, claims.UserID)
		c.Next()
	}
}

// CallerID returns the identity stored by AuthRequired, or uuid.Nil.
func CallerID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(callerKey)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id := CallerID(c); id != uuid.Nil {
			kv = append(kv, "user_id", id)
		}
		switch {
		case status >= 500:
			log.Error("request", kv...)
		case status >= 400:
			log.Warn("request", kv...)
		default:
			log.Info("request", kv...)
		}
	}
}

// HTTPObserver receives one observation per request.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

func Metrics(obs HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		obs.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
