package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/embedd/embedd/pkg/logger"
)

// requestLogger logs each completed request and attaches the server logger to
// the request context so handlers log through the same sink.
func requestLogger(ctx context.Context) gin.HandlerFunc {
	log := logger.FromContext(ctx)
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), log))
		c.Next()
		status := c.Writer.Status()
		keyvals := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", keyvals...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", keyvals...)
		default:
			log.Debug("request completed", keyvals...)
		}
	}
}
