package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// Forbidden is the one body every denied request gets, whether the cause
// was a CSRF mismatch or a missing permission. The two must stay
// indistinguishable to the caller.
func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "FORBIDDEN", "Request denied")
}

// Unavailable reports a failed dependency without naming it.
func Unavailable(c *gin.Context) {
	Error(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service temporarily unavailable")
}
