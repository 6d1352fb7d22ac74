package a2asrv

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davidvonthenen/a2a-simple/a2a"
	"github.com/davidvonthenen/a2a-simple/logging"
)

// RequestLogger logs one line per served request. Card fetches are logged at
// Debug to keep Info clean; discovery probes hit that path on every startup.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.Method == http.MethodOptions {
			return
		}

		log := logger.Info
		if c.Request.Method == http.MethodGet && c.Request.URL.Path == a2a.WellKnownCardPath {
			log = logger.Debug
		}

		log("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// CORSMiddleware allows browser-based clients to reach the agent endpoints.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
