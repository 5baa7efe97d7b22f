package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hupe1980/pinelocal/internal/resource"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

const requestIDKey = "request_id"

// requestID tags every request with the incoming X-Request-Id or a new uuid.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// observe logs each request and records it with m when m is set.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		d := time.Since(start)

		code := c.Writer.Status()
		if s.metrics != nil {
			s.metrics.recordRequest(c.Request.Method, c.FullPath(), code, d)
		}

		level := s.logger.DebugContext
		if code >= http.StatusInternalServerError {
			level = s.logger.WarnContext
		}
		level(c.Request.Context(), "request",
			"request_id", requestIDFrom(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", code,
			"duration", d,
		)
	}
}

// rateLimit rejects requests beyond the controller's request rate with 429.
func (s *Server) rateLimit(rc *resource.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rc.Allow() {
			if s.metrics != nil {
				s.metrics.rateLimited.Inc()
			}
			abortWithError(c, http.StatusTooManyRequests, msgRateLimited)
			return
		}
		c.Next()
	}
}

// auth accepts "Authorization: Bearer <key>" or the bare key.
func auth(apiKey string) gin.HandlerFunc {
	want := []byte(apiKey)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, http.StatusUnauthorized, msgMissingAuth)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			abortWithError(c, http.StatusUnauthorized, msgInvalidAPIKey)
			return
		}
		c.Next()
	}
}
