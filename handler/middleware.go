package handler

import (
	"log/slog"
	"regexp"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// ローカル開発用。ポートは任意
var localhostOrigin = regexp.MustCompile(`^http://localhost(:\d+)?$`)

// requestLogger tags every request with an id and logs it once the response is written.
// A well formed X-Request-ID from the caller is kept.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()

		slog.Info("request",
			slog.String("request_id", id),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func (h *Handler) allowOrigin(origin string) bool {
	if localhostOrigin.MatchString(origin) {
		return true
	}
	for _, o := range h.corsOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// corsMiddleware leaves responses to disallowed origins untouched, without CORS
// headers, so they keep their normal status codes.
func (h *Handler) corsMiddleware() gin.HandlerFunc {
	allowed := cors.New(cors.Config{
		AllowOriginFunc:  h.allowOrigin,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", adminTokenHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && !h.allowOrigin(origin) {
			return
		}
		allowed(c)
	}
}
