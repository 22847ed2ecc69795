package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wastetrack/internal/domain"
)

// SessionRepository owns session lifecycle including refresh rotation.
// Rotation is a single conditional UPDATE so that two clients racing
// with the same refresh token can never both win.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create binds the first refresh jti in the same insert that creates the
// session, so there is no instant where a session exists without exactly
// one valid refresh token.
func (r *SessionRepository) Create(ctx context.Context, userID int64, refreshJTI string, expiresAt time.Time) (*domain.Session, error) {
	now := time.Now()
	s := &domain.Session{
		ID:                    uuid.NewString(),
		UserID:                userID,
		CurrentRefreshTokenID: refreshJTI,
		ExpiresAt:             expiresAt,
		LastActivityAt:        now,
		CreatedAt:             now,
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetLive returns the session if it exists and has not expired. Expired
// rows are deleted on sight; the periodic sweep is an optimization, not
// what correctness depends on.
func (r *SessionRepository) GetLive(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if s.IsExpired(time.Now()) {
		if err := r.db.WithContext(ctx).Delete(&domain.Session{}, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}
	return &s, nil
}

// Touch is best effort; callers ignore its error.
func (r *SessionRepository) Touch(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ?", id).
		Update("last_activity_at", time.Now()).Error
}

// Rotate swaps the current refresh jti for nextJTI, but only if
// presentedJTI is still the current one. When the compare-and-swap
// misses on a live session the token was already spent, and the whole
// session is destroyed before ErrRefreshReused is returned.
func (r *SessionRepository) Rotate(ctx context.Context, sessionID, presentedJTI, nextJTI string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ? AND current_refresh_token_id = ? AND expires_at > ?", sessionID, presentedJTI, now).
		Updates(map[string]any{
			"current_refresh_token_id": nextJTI,
			"last_activity_at":         now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var s domain.Session
	if err := r.db.WithContext(ctx).First(&s, "id = ?", sessionID).Error; err != nil {
		return err
	}
	if s.IsExpired(now) {
		if err := r.db.WithContext(ctx).Delete(&domain.Session{}, "id = ?", sessionID).Error; err != nil {
			return err
		}
		return ErrSessionExpired
	}
	if err := r.db.WithContext(ctx).Delete(&domain.Session{}, "id = ?", sessionID).Error; err != nil {
		return err
	}
	return ErrRefreshReused
}

// Invalidate is idempotent: deleting a session that is already gone is
// not an error.
func (r *SessionRepository) Invalidate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Session{}, "id = ?", id).Error
}

func (r *SessionRepository) InvalidateAllForUser(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
