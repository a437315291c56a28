package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnify/learnify/internal/apperrors"
	"github.com/learnify/learnify/internal/identity"
	"github.com/learnify/learnify/internal/logging"
)

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.verifier.VerifyHeader(c.GetHeader("Authorization"))
		if err != nil {
			s.logger.Debug("Authentication failed", "path", c.Request.URL.Path, "error", err)
			msg := "invalid or expired token"
			if errors.Is(err, identity.ErrNoToken) {
				msg = "missing bearer token"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope{
				Error: apiError{Code: string(apperrors.KindUnauthorized), Message: msg},
			})
			return
		}
		c.Request = c.Request.WithContext(identity.WithUser(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

// optionalAuth attaches the user when a valid token is present and lets
// anonymous requests through.
func (s *Server) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := s.verifier.VerifyHeader(c.GetHeader("Authorization")); err == nil {
			c.Request = c.Request.WithContext(identity.WithUser(c.Request.Context(), claims.Subject))
		}
		c.Next()
	}
}

func requestLogger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []any{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if userID := identity.UserFrom(c.Request.Context()); userID != "" {
			fields = append(fields, "user_id", userID)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Debug("HTTP request", fields...)
		}
	}
}
