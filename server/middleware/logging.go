package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/transducekit/logger"
)

var quietPaths = map[string]bool{"/health": true, "/alive": true}

// RequestLogger logs every request with method, path, status and duration.
// Probe paths are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]any{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			logger.FieldStatus:   status,
			logger.FieldDuration: time.Since(start).Milliseconds(),
		}
		if route := c.FullPath(); route != "" {
			fields["route"] = route
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Error("Request completed", fields)
		case status >= 400:
			l.Warn("Request completed", fields)
		default:
			l.Debug("Request completed", fields)
		}
	}
}
