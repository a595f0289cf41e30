package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "device-query"

// Router wires the Query API, metrics and the optional static site.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), h.corsMiddleware(), otelgin.Middleware(serviceName))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.POST("/queries", h.CreateQuery)
		api.GET("/queries", h.ListQueries)
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{})))
	r.NoRoute(h.noRoute())
	return r
}

// noRoute serves STATIC_DIR for GET and HEAD outside /api/, and a JSON 404 otherwise.
func (h *Handler) noRoute() gin.HandlerFunc {
	var files http.Handler
	if h.staticDir != "" {
		files = http.FileServer(http.Dir(h.staticDir))
	}
	return func(c *gin.Context) {
		method := c.Request.Method
		if files != nil && (method == http.MethodGet || method == http.MethodHead) &&
			!strings.HasPrefix(c.Request.URL.Path, "/api/") {
			files.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.JSON(http.StatusNotFound, errorResponse{Error: msgNotFound})
	}
}
