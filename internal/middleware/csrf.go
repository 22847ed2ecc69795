package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/pkg/csrf"
	"wastetrack/internal/pkg/response"
)

// CSRFCookieName is shared with the auth handler that issues the token.
const CSRFCookieName = "csrf_token"

// CSRFHeaderName carries the double-submit copy on mutating requests.
const CSRFHeaderName = "X-CSRF-Token"

// CSRFGuard enforces the double-submit check on every mutating method.
// Safe methods pass through untouched. The rejection must happen before
// any handler side effect and must be indistinguishable from a permission
// denial.
func CSRFGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		cookie, err := c.Cookie(CSRFCookieName)
		if err != nil || !csrf.Match(cookie, c.GetHeader(CSRFHeaderName)) {
			response.Forbidden(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
