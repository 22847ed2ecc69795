package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wastetrack/internal/domain"
	"wastetrack/internal/metrics"
	"wastetrack/internal/pkg/password"
	"wastetrack/internal/pkg/token"
	"wastetrack/internal/repository"
)

// Service contains all business logic for authentication and the session
// lifecycle. Every decision that touches the store happens here; handlers
// only translate results to HTTP.
type Service struct {
	users    UserStore
	sessions SessionStore
	attempts AttemptTracker
	tokens   *token.Manager
	hasher   *password.Hasher
	notifier SecurityNotifier
	metrics  *metrics.Metrics

	lockoutThreshold int64
	lockoutWindow    time.Duration
}

type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

func NewService(
	users UserStore,
	sessions SessionStore,
	attempts AttemptTracker,
	tokens *token.Manager,
	hasher *password.Hasher,
	notifier SecurityNotifier,
	m *metrics.Metrics,
	lockoutThreshold int64,
	lockoutWindow time.Duration,
) *Service {
	return &Service{
		users:            users,
		sessions:         sessions,
		attempts:         attempts,
		tokens:           tokens,
		hasher:           hasher,
		notifier:         notifier,
		metrics:          m,
		lockoutThreshold: lockoutThreshold,
		lockoutWindow:    lockoutWindow,
	}
}

// Login verifies credentials and opens a session. The lockout check runs
// before any password hashing so a locked account costs no bcrypt work and
// leaks no timing signal. Lockout counts failures for the username OR the
// client address within the window; a success clears both.
func (s *Service) Login(ctx context.Context, req LoginRequest, clientAddr string) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	failures, err := s.attempts.CountRecentFailures(ctx, email, clientAddr, s.lockoutWindow)
	if err != nil {
		// Cannot prove the account is not locked, so the attempt fails.
		log.Printf("login_lockout_check username=%s error=%v", email, err)
		return nil, ErrInvalidCredentials
	}
	if failures >= s.lockoutThreshold {
		s.metrics.ObserveLogin("locked")
		s.metrics.IncLockout()
		if s.notifier != nil {
			s.notifier.AccountLocked(email, clientAddr)
		}
		return nil, ErrAccountLocked
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordFailure(ctx, email, clientAddr, "unknown user")
			s.metrics.ObserveLogin("failure")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.recordFailure(ctx, email, clientAddr, "bad password")
		s.metrics.ObserveLogin("failure")
		return nil, ErrInvalidCredentials
	}

	// The refresh jti is bound to the session row before the token
	// carrying it is minted.
	refreshJTI := uuid.NewString()
	sess, err := s.sessions.Create(ctx, user.ID, refreshJTI, time.Now().Add(s.tokens.RefreshTTL()))
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(user, sess.ID, uuid.NewString())
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID, sess.ID, refreshJTI)
	if err != nil {
		return nil, err
	}

	if err := s.attempts.RecordSuccess(ctx, email, clientAddr); err != nil {
		log.Printf("login_attempt_success username=%s error=%v", email, err)
	}

	s.metrics.ObserveLogin("success")
	user.PasswordHash = ""
	return &LoginResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates the presented refresh token. The store swap is atomic:
// of two concurrent calls with the same token exactly one wins, the other
// burns the session. Expiry is absolute, set at login; refreshing does not
// extend it.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*RefreshResult, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshRaw)
	if err != nil {
		s.metrics.ObserveRefresh("invalid")
		return nil, ErrInvalidRefreshToken
	}

	nextJTI := uuid.NewString()
	if err := s.sessions.Rotate(ctx, claims.SessionID, claims.ID, nextJTI); err != nil {
		switch {
		case errors.Is(err, repository.ErrRefreshReused):
			s.metrics.ObserveRefresh("reuse")
			s.metrics.IncReuseDetected()
			if s.notifier != nil {
				s.notifier.RefreshReuse(claims.UserID, claims.SessionID)
			}
			return nil, ErrReuseDetected
		case errors.Is(err, repository.ErrSessionExpired):
			s.metrics.ObserveRefresh("expired")
			return nil, ErrSessionExpired
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.metrics.ObserveRefresh("invalid")
			return nil, ErrInvalidRefreshToken
		default:
			return nil, err
		}
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The principal is gone; the session must not outlive it.
			if invErr := s.sessions.Invalidate(ctx, claims.SessionID); invErr != nil {
				log.Printf("refresh_invalidate session_id=%s error=%v", claims.SessionID, invErr)
			}
			s.metrics.ObserveRefresh("invalid")
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(user, claims.SessionID, uuid.NewString())
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID, claims.SessionID, nextJTI)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveRefresh("success")
	return &RefreshResult{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout invalidates the session server-side. Missing sessions are not an
// error: logging out twice is fine.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Invalidate(ctx, sessionID)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// ChangePassword re-hashes and then kills every session of the user, the
// calling one included. Session invalidation is best-effort once the new
// hash is persisted.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	if _, err := s.sessions.InvalidateAllForUser(ctx, userID); err != nil {
		log.Printf("change_password_invalidate user_id=%d error=%v", userID, err)
	}
	return nil
}

func (s *Service) recordFailure(ctx context.Context, username, clientAddr, reason string) {
	if err := s.attempts.RecordFailure(ctx, username, clientAddr, reason); err != nil {
		log.Printf("login_attempt_failure username=%s error=%v", username, err)
	}
}
