package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/transducekit/errors"
	"github.com/kbukum/transducekit/logger"
)

// Recovery recovers from panics, logs the stack and answers 500.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithContext(c.Request.Context()).Error("Panic recovered", map[string]any{
					"error":  fmt.Sprintf("%v", rec),
					"stack":  string(debug.Stack()),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.Internal(nil).ToResponse())
			}
		}()
		c.Next()
	}
}
