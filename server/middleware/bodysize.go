package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const defaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// BodySizeLimit restricts request bodies to maxSize ("10MB", "512KB", "1GB"
// or a byte count). Unparseable sizes fall back to 10MB.
func BodySizeLimit(maxSize string) gin.HandlerFunc {
	limit := ParseSize(maxSize, defaultMaxBodySize)
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// ParseSize parses a human-readable byte size.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}

	var multiplier int64 = 1
	for _, unit := range []struct {
		suffix string
		factor int64
	}{{"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10}} {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.factor
			s = strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			break
		}
	}

	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil || val <= 0 {
		return defaultBytes
	}
	return val * multiplier
}
