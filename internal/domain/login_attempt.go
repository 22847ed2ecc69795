package domain

import "time"

// LoginAttempt is an append-only trace of login outcomes. Failed attempts
// are counted over a sliding window keyed by username OR client address,
// so an attacker rotating one of the two is still throttled by the other.
type LoginAttempt struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	Username      string    `json:"username" gorm:"size:255;index"`
	ClientAddr    string    `json:"client_addr" gorm:"size:64;index"`
	Success       bool      `json:"success"`
	FailureReason *string   `json:"failure_reason,omitempty" gorm:"size:64"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
}
