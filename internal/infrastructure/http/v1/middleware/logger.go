package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ledgerbook/pkg/logger"
)

// Logger puts log into the request context and logs each request with timing and status.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))
		c.Next()

		status := c.Writer.Status()
		emit := logger.Info
		if status >= http.StatusInternalServerError {
			emit = logger.Error
		}
		emit(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
