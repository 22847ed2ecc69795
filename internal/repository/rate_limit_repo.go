package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wastetrack/internal/domain"
)

// RateDecision carries what the middleware needs for response headers.
type RateDecision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

type RateLimitRepository struct {
	db *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// Check counts this request against the identity's fixed window and says
// whether it may proceed. Insert-or-increment runs in one transaction,
// so concurrent requests across instances settle on a single counter row
// and the limit cannot be overshot.
func (r *RateLimitRepository) Check(ctx context.Context, identity, class string, limit int64, window time.Duration) (RateDecision, error) {
	now := time.Now()
	windowStart := now.Truncate(window)
	resetAt := windowStart.Add(window)
	d := RateDecision{Limit: limit, ResetAt: resetAt}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Spent windows for this bucket are dropped here rather than by
		// a background job, keeping the table bounded per key.
		if err := tx.
			Where("identity = ? AND endpoint_class = ? AND expires_at < ?", identity, class, now).
			Delete(&domain.RateLimitCounter{}).Error; err != nil {
			return err
		}

		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.RateLimitCounter{
			Identity:      identity,
			EndpointClass: class,
			WindowStart:   windowStart,
			RequestCount:  1,
			ExpiresAt:     resetAt,
		})
		if ins.Error != nil {
			return ins.Error
		}
		if ins.RowsAffected == 1 {
			d.Allowed = true
			d.Remaining = limit - 1
			return nil
		}

		upd := tx.Model(&domain.RateLimitCounter{}).
			Where("identity = ? AND endpoint_class = ? AND window_start = ? AND request_count < ?",
				identity, class, windowStart, limit).
			Update("request_count", gorm.Expr("request_count + 1"))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			d.Allowed = false
			d.Remaining = 0
			return nil
		}

		var c domain.RateLimitCounter
		if err := tx.
			Where("identity = ? AND endpoint_class = ? AND window_start = ?", identity, class, windowStart).
			First(&c).Error; err != nil {
			return err
		}
		d.Allowed = true
		d.Remaining = limit - c.RequestCount
		if d.Remaining < 0 {
			d.Remaining = 0
		}
		return nil
	})

	return d, err
}

func (r *RateLimitRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&domain.RateLimitCounter{})
	return res.RowsAffected, res.Error
}
