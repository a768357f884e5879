package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sixthshift/artframed/internal/apierr"
)

// AllowedHTTPMethods rejects methods the JSON API never needs (TRACE,
// CONNECT, and friends), returning 405.
func AllowedHTTPMethods() gin.HandlerFunc {
	allowed := map[string]bool{
		http.MethodGet: true, http.MethodPost: true, http.MethodPut: true,
		http.MethodPatch: true, http.MethodDelete: true, http.MethodOptions: true,
		http.MethodHead: true,
	}

	return func(c *gin.Context) {
		if !allowed[c.Request.Method] {
			c.Header("Allow", "GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD")
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, apierr.Fail(
				apierr.New(apierr.CodeRejected, "method "+c.Request.Method+" is not allowed"),
			))
			return
		}
		c.Next()
	}
}
