package http

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

const headerRequestID = "X-Request-Id"

// OperationID reuses the caller's X-Request-Id, or generates one, as the
// operation id of every catalog call made while serving the request.
func OperationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(catalog.WithOperationID(c.Request.Context(), id))
		c.Set("op_id", id)
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

// AccessLog logs one line per request at a level matching the status.
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"op_id", c.GetString("op_id"),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
