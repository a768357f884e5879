package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sixthshift/artframed/internal/apierr"
)

// MaxRequestBodySize bounds request bodies; instance settings payloads
// and bulk schedule writes are small JSON documents, never file uploads.
const MaxRequestBodySize int64 = 1 * 1024 * 1024

// RequestSizeLimiter rejects oversized request bodies before they're
// read, and caps actual reads regardless of a lying Content-Length.
func RequestSizeLimiter(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, apierr.Fail(
				apierr.New(apierr.CodeRejected, "request body exceeds maximum allowed size"),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
