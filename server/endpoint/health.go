package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/transducekit/observability"
	"github.com/kbukum/transducekit/version"
)

// Health reports service health including every checker's status. A down
// component answers 503.
func Health(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.CheckAll(c.Request.Context(), serviceName, version.Get().Version, checkers...)
		status := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, sh)
	}
}
