package auth

import (
	"context"
	"time"

	"wastetrack/internal/domain"
)

// UserStore exposes only the user methods the auth service uses.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// SessionStore is the session lifecycle as the auth service drives it.
type SessionStore interface {
	Create(ctx context.Context, userID int64, refreshJTI string, expiresAt time.Time) (*domain.Session, error)
	Rotate(ctx context.Context, sessionID, presentedJTI, nextJTI string) error
	Invalidate(ctx context.Context, sessionID string) error
	InvalidateAllForUser(ctx context.Context, userID int64) (int64, error)
}

// AttemptTracker is the persisted brute-force bookkeeping.
type AttemptTracker interface {
	CountRecentFailures(ctx context.Context, username, clientAddr string, window time.Duration) (int64, error)
	RecordFailure(ctx context.Context, username, clientAddr, reason string) error
	RecordSuccess(ctx context.Context, username, clientAddr string) error
}

// SecurityNotifier fans security events out to connected observers.
// Implementations must not block the login path.
type SecurityNotifier interface {
	AccountLocked(username, clientAddr string)
	RefreshReuse(userID int64, sessionID string)
}
