package domain

import "time"

// RateLimitCounter is one fixed-window bucket of the persisted rate
// limiter. The unique index over (identity, endpoint_class, window_start)
// is what makes concurrent first-requests of a window converge on a
// single row that can then be incremented transactionally.
type RateLimitCounter struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	Identity      string    `json:"identity" gorm:"size:128;uniqueIndex:idx_rate_bucket,priority:1;not null"`
	EndpointClass string    `json:"endpoint_class" gorm:"size:32;uniqueIndex:idx_rate_bucket,priority:2;not null"`
	WindowStart   time.Time `json:"window_start" gorm:"uniqueIndex:idx_rate_bucket,priority:3;not null"`
	RequestCount  int64     `json:"request_count" gorm:"not null"`
	ExpiresAt     time.Time `json:"expires_at" gorm:"index;not null"`
}
