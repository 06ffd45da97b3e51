package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scholarship-fund.backend/pkg/metrics"
)

const (
	serviceName    = "scholarship-fund-backend"
	serviceVersion = "0.1.0"
)

func applyCORSMiddleware(r *gin.Engine, allowedOrigins []string) {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, Idempotency-Key, X-Session-Id, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Idempotency-Hit")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

// healthProbe checks one dependency; a non-nil error marks the service degraded.
type healthProbe struct {
	name  string
	check func(ctx context.Context) error
}

func registerHealthRoute(r *gin.Engine, probes ...healthProbe) {
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(gin.H, len(probes))
		for _, p := range probes {
			if err := p.check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				checks[p.name] = err.Error()
				continue
			}
			checks[p.name] = "ok"
		}

		body := gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(checks) > 0 {
			body["checks"] = checks
		}
		c.JSON(status, body)
	})
}

func registerMetricsRoute(r *gin.Engine, m *metrics.Metrics) {
	r.GET("/metrics", gin.WrapH(m.Handler()))
}
