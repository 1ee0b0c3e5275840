package utils

import (
	"time"

	"github.com/gin-gonic/gin"

	"cafestaff/logger"
	"cafestaff/metrics"
)

// RequestLogger logs one line per request through the service logger.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}
		switch {
		case status >= 500:
			log.Error("HTTP request", kv...)
		case status >= 400:
			log.Warn("HTTP request", kv...)
		default:
			log.Info("HTTP request", kv...)
		}
	}
}

// Metrics records request counts and latency labelled by the matched route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
