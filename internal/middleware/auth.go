package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wastetrack/internal/domain"
	"wastetrack/internal/pkg/response"
	"wastetrack/internal/pkg/token"
	"wastetrack/internal/repository"
)

// SessionStore is the slice of the session repository the auth guard needs.
type SessionStore interface {
	GetLive(ctx context.Context, id string) (*domain.Session, error)
	Touch(ctx context.Context, id string) error
}

// RequireAuth verifies the access token and checks that the session it is
// bound to is still live. A token that verifies cryptographically but whose
// session is gone (logged out, rotated away, expired) is rejected. Store
// errors reject too: liveness must be proven, not assumed.
//
// Token sources, in order: Authorization "Bearer <token>", then the
// access_token cookie.
func RequireAuth(tokens *token.Manager, sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				raw = cookie
			}
		}
		if raw == "" {
			unauthorized(c)
			return
		}

		claims, err := tokens.VerifyAccessToken(raw)
		if err != nil {
			unauthorized(c)
			return
		}

		if _, err := sessions.GetLive(c.Request.Context(), claims.SessionID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, repository.ErrSessionExpired) {
				log.Printf("auth_session_lookup session_id=%s error=%v", claims.SessionID, err)
			}
			unauthorized(c)
			return
		}

		// Activity tracking is best-effort.
		if err := sessions.Touch(c.Request.Context(), claims.SessionID); err != nil {
			log.Printf("auth_session_touch session_id=%s error=%v", claims.SessionID, err)
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		if claims.BranchID != nil {
			c.Set("branch_id", *claims.BranchID)
		}
		c.Set("session_id", claims.SessionID)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *gin.Context) {
	response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in again")
	c.Abort()
}
