package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Live always answers 200.
func Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready answers 200 when checker.Ready succeeds and 503 otherwise.
func Ready(checker *Checker, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := checker.Ready(ctx); err != nil {
			log.WarnContext(ctx, "readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
