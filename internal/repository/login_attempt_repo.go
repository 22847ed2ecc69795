package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"wastetrack/internal/domain"
)

type LoginAttemptRepository struct {
	db *gorm.DB
}

func NewLoginAttemptRepository(db *gorm.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// CountRecentFailures counts failed attempts inside the window that
// match the username OR the client address. The union is deliberate:
// rotating addresses does not reset the username counter and vice versa.
func (r *LoginAttemptRepository) CountRecentFailures(ctx context.Context, username, clientAddr string, window time.Duration) (int64, error) {
	var count int64
	since := time.Now().Add(-window)
	tx := r.db.WithContext(ctx).Model(&domain.LoginAttempt{}).
		Where("success = ?", false).
		Where("created_at >= ?", since).
		Where("username = ? OR client_addr = ?", normalizeUsername(username), clientAddr).
		Count(&count)
	return count, tx.Error
}

func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, username, clientAddr, reason string) error {
	attempt := &domain.LoginAttempt{
		Username:      normalizeUsername(username),
		ClientAddr:    clientAddr,
		Success:       false,
		FailureReason: &reason,
		CreatedAt:     time.Now(),
	}
	return r.db.WithContext(ctx).Create(attempt).Error
}

// RecordSuccess clears prior failures for both keys and appends the
// success row in one transaction, so a successful login fully resets
// the lockout clock.
func (r *LoginAttemptRepository) RecordSuccess(ctx context.Context, username, clientAddr string) error {
	username = normalizeUsername(username)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("success = ?", false).
			Where("username = ? OR client_addr = ?", username, clientAddr).
			Delete(&domain.LoginAttempt{}).Error; err != nil {
			return err
		}
		return tx.Create(&domain.LoginAttempt{
			Username:   username,
			ClientAddr: clientAddr,
			Success:    true,
			CreatedAt:  time.Now(),
		}).Error
	})
}

func (r *LoginAttemptRepository) ListRecent(ctx context.Context, limit, offset int) ([]domain.LoginAttempt, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var attempts []domain.LoginAttempt
	tx := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&attempts)
	return attempts, tx.Error
}

func (r *LoginAttemptRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&domain.LoginAttempt{})
	return res.RowsAffected, res.Error
}

func normalizeUsername(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
