package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajac/admission-portal/internal/session"
	"github.com/rajac/admission-portal/pkg/response"
)

// CSRFHeader carries the single-use token on unsafe requests.
const CSRFHeader = "X-CSRF-Token"

// CSRF requires a valid token on every state-changing request. exempt paths
// (such as the page-hide beacon, which cannot set headers) skip the check.
func CSRF(csrf *session.CSRF, exempt ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}

		req := SessionFrom(c)
		if req == nil {
			c.Next()
			return
		}
		if err := csrf.Consume(c.Request.Context(), req.Durable(), req.ClientID, c.GetHeader(CSRFHeader)); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
