package httpcache

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// capturingWriter buffers the response body so it can be cached after a
// handler completes, alongside writing through to the real client.
type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

type cachedResponse struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// Middleware caches successful GET response bodies under their request
// URI and serves cached bodies back on a hit. Mutating requests pass
// through untouched; invalidation is the caller's responsibility via
// InvalidatePrefix.
func Middleware(cache *Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || !cache.Enabled() {
			c.Next()
			return
		}

		key := "http:" + c.Request.URL.RequestURI()

		var cached cachedResponse
		if hit, _ := cache.Get(c.Request.Context(), key, &cached); hit {
			c.Header("X-Cache", "HIT")
			c.Data(cached.StatusCode, "application/json", []byte(cached.Body))
			c.Abort()
			return
		}

		writer := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Header("X-Cache", "MISS")
		c.Next()

		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			_ = cache.Set(c.Request.Context(), key, cachedResponse{
				StatusCode: c.Writer.Status(),
				Body:       writer.body.String(),
			}, ttl)
		}
	}
}
