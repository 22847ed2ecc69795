package middleware

import (
	"github.com/gin-gonic/gin"

	"wastetrack/internal/permission"
)

// Guards builds the per-route middleware chains. The order inside a
// chain is a contract: rate limit first, so rejected probes still burn
// budget, CSRF before any token work, then token and session
// verification, then the role grant.
type Guards struct {
	rl   *RateLimiter
	auth gin.HandlerFunc
}

func NewGuards(rl *RateLimiter, auth gin.HandlerFunc) *Guards {
	return &Guards{rl: rl, auth: auth}
}

// Public is the chain for unauthenticated endpoints.
func (g *Guards) Public(class string, handler gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{g.rl.Limit(class), CSRFGuard(), handler}
}

// Authed is the chain for endpoints any signed-in principal may call.
func (g *Guards) Authed(class string, handler gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{g.rl.Limit(class), CSRFGuard(), g.auth, handler}
}

// Protected is the chain for endpoints behind a specific role grant.
func (g *Guards) Protected(class string, res permission.Resource, act permission.Action, handler gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{g.rl.Limit(class), CSRFGuard(), g.auth, RequirePermission(res, act), handler}
}
