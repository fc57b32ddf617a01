package server

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
)

const (
	requestIDKey = "requestId"
	principalKey = "principal"

	requestIDHeader = "X-Request-Id"
)

// RequestID attaches a request ID to the context and the response. A
// client-supplied ID is kept only when it parses as a UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if err := uuid.Validate(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext returns the ID stored by RequestID.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logging emits one structured log line per request.
func Logging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"request_id", RequestIDFromContext(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if p, ok := PrincipalFromContext(c); ok {
			attrs = append(attrs, "principal", p.ID)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request failed", attrs...)
			return
		}
		logger.Info("request complete", attrs...)
	}
}

// Recovery turns panics into a 500 response.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic",
					"request_id", RequestIDFromContext(c),
					"error", rec,
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
				)
				respondError(c, http.StatusInternalServerError, "internal", "Unexpected server error")
			}
		}()
		c.Next()
	}
}

// Auth resolves the bearer token through dir and stores the principal.
// Unknown or missing tokens get 401.
func Auth(dir host.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" || dir == nil {
			respondError(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid token")
			return
		}
		p, ok := dir.Lookup(token)
		if !ok {
			respondError(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid token")
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// PrincipalFromContext returns the principal stored by Auth.
func PrincipalFromContext(c *gin.Context) (host.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return host.Anonymous, false
	}
	p, ok := v.(host.Principal)
	return p, ok
}
