package middleware

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/config"
	"wastetrack/internal/metrics"
	"wastetrack/internal/pkg/response"
	"wastetrack/internal/pkg/token"
	"wastetrack/internal/repository"
)

// Endpoint classes. Each spends its own budget.
const (
	ClassLogin     = "login"
	ClassRefresh   = "refresh"
	ClassRead      = "read"
	ClassWrite     = "write"
	ClassDelete    = "delete"
	ClassAnalytics = "analytics"
	ClassExport    = "export"
)

// CounterStore is the slice of the rate-limit repository the guard needs.
type CounterStore interface {
	Check(ctx context.Context, identity, class string, limit int64, window time.Duration) (repository.RateDecision, error)
}

// DenialNotifier receives every denied request. May be nil.
type DenialNotifier interface {
	RateLimited(identity, class string)
}

// RateLimiter turns persisted counter decisions into HTTP responses. The
// counters live in the store, so every running instance spends the same
// budget.
type RateLimiter struct {
	store    CounterStore
	budgets  config.RateLimits
	tokens   *token.Manager
	metrics  *metrics.Metrics
	notifier DenialNotifier
}

func NewRateLimiter(store CounterStore, budgets config.RateLimits, tokens *token.Manager, m *metrics.Metrics, notifier DenialNotifier) *RateLimiter {
	return &RateLimiter{store: store, budgets: budgets, tokens: tokens, metrics: m, notifier: notifier}
}

// Limit enforces the budget of one endpoint class. A store failure lets the
// request through: rate limiting is best-effort, unlike session liveness.
func (rl *RateLimiter) Limit(class string) gin.HandlerFunc {
	budget := rl.budget(class)
	return func(c *gin.Context) {
		identity := rl.identity(c)
		dec, err := rl.store.Check(c.Request.Context(), identity, class, budget.Limit, budget.Window)
		if err != nil {
			log.Printf("rate_limit_check class=%s error=%v", class, err)
			rl.metrics.ObserveRateDecision(class, "error")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(dec.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(dec.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(dec.ResetAt.Unix(), 10))

		if !dec.Allowed {
			retry := int(time.Until(dec.ResetAt).Seconds()) + 1
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			rl.metrics.ObserveRateDecision(class, "denied")
			if rl.notifier != nil {
				rl.notifier.RateLimited(identity, class)
			}
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
			c.Abort()
			return
		}

		rl.metrics.ObserveRateDecision(class, "allowed")
		c.Next()
	}
}

func (rl *RateLimiter) budget(class string) config.RateBudget {
	switch class {
	case ClassLogin:
		return rl.budgets.Login
	case ClassRefresh:
		return rl.budgets.Refresh
	case ClassWrite:
		return rl.budgets.Write
	case ClassDelete:
		return rl.budgets.Delete
	case ClassAnalytics:
		return rl.budgets.Analytics
	case ClassExport:
		return rl.budgets.Export
	default:
		return rl.budgets.Read
	}
}

// identity prefers the authenticated subject so one user cannot spend the
// budget of a whole NAT. The guard runs before RequireAuth, so the token
// is parsed best-effort here and never rejects anything by itself.
func (rl *RateLimiter) identity(c *gin.Context) string {
	raw := bearerToken(c)
	if raw == "" {
		if cookie, err := c.Cookie("access_token"); err == nil {
			raw = cookie
		}
	}
	if raw != "" {
		if claims, err := rl.tokens.VerifyAccessToken(raw); err == nil {
			return "user:" + strconv.FormatInt(claims.UserID, 10)
		}
	}
	if ip := c.ClientIP(); ip != "" {
		return "ip:" + ip
	}
	return "unknown"
}
