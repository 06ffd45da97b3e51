package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"scholarship-fund.backend/pkg/logger"
)

// LoggerMiddleware writes one structured line per request, keyed by the
// matched route template so per-address paths group together.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		logger.LogRequest(c.Request.Context(), c.Request.Method, route, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}
