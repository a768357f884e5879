package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sixthshift/artframed/internal/apierr"
)

// TimeoutConfig holds configuration for request timeouts.
type TimeoutConfig struct {
	Timeout       time.Duration
	ExcludedPaths []string
}

// DefaultTimeoutConfig gives every request 30 seconds; generating and
// pushing a frame can legitimately take a few seconds, so this stays
// generous rather than racing plugin-instance test renders.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{Timeout: 30 * time.Second}
}

// Timeout aborts a request with 408 if it runs longer than config.Timeout.
func Timeout(config TimeoutConfig) gin.HandlerFunc {
	excluded := make(map[string]bool, len(config.ExcludedPaths))
	for _, path := range config.ExcludedPaths {
		excluded[path] = true
	}

	return func(c *gin.Context) {
		if excluded[c.Request.URL.Path] {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), config.Timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		finished := make(chan struct{})
		go func() {
			c.Next()
			close(finished)
		}()

		select {
		case <-finished:
		case <-ctx.Done():
			c.AbortWithStatusJSON(http.StatusRequestTimeout, apierr.Fail(
				apierr.New(apierr.CodeInternal, "request took too long to process"),
			))
		}
	}
}
