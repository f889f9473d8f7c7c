package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger returns a Gin middleware that logs each request with zap. The
// trace_id and client_id fields match the columns on path audit rows, so a
// log line can be joined against its audit record.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("trace_id", GetTraceID(c)),
			zap.String("client_ip", c.ClientIP()),
		}
		if clientID := GetClientID(c); clientID != "" {
			fields = append(fields, zap.String("client_id", clientID))
		}
		// health probes would drown everything else at Info
		if c.Request.URL.Path == "/health" {
			log.Debug("http", fields...)
			return
		}
		log.Info("http", fields...)
	}
}
