package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRequestIDGeneratesWhenAbsent(t *testing.T) {
	r := newTestEngine()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	require.Equal(t, rec.Header().Get(RequestIDHeader), rec.Body.String())
}

func TestRequestIDPreservesIncoming(t *testing.T) {
	r := newTestEngine()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))
}

func TestAllowedHTTPMethodsRejectsUnknownMethod(t *testing.T) {
	r := newTestEngine()
	r.Use(AllowedHTTPMethods())
	r.Handle("TRACE", "/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("TRACE", "/x", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestSizeLimiterRejectsOversizedBody(t *testing.T) {
	r := newTestEngine()
	r.Use(RequestSizeLimiter(10))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	body := bytes.NewBufferString("this body is definitely longer than ten bytes")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", body))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestTimeoutAbortsSlowHandler(t *testing.T) {
	r := newTestEngine()
	r.Use(Timeout(TimeoutConfig{Timeout: 10 * time.Millisecond}))
	r.GET("/x", func(c *gin.Context) {
		time.Sleep(50 * time.Millisecond)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusRequestTimeout, rec.Code)
}

func TestSecurityHeadersSetsNoFrameAndNoSniff(t *testing.T) {
	r := newTestEngine()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestStructuredLoggerSkipsConfiguredPath(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := newTestEngine()
	r.Use(StructuredLogger(&log, DefaultStructuredLoggerConfig()))
	r.GET("/api/system/status", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))
	require.Empty(t, buf.String())
}

func TestStructuredLoggerLogsOtherPaths(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := newTestEngine()
	r.Use(StructuredLogger(&log, DefaultStructuredLoggerConfig()))
	r.GET("/api/instances", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/instances", nil))
	require.Contains(t, buf.String(), "/api/instances")
}
