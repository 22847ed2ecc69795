package domain

import "time"

// Session is the server-side record behind a refresh token family.
//
// Security notes:
//   - CurrentRefreshTokenID holds the jti of the one refresh token that is
//     valid for this session right now. Rotation swaps it atomically.
//   - A presented refresh token whose jti no longer matches means the token
//     was already spent: the whole session is destroyed, not just the token.
type Session struct {
	ID                    string    `json:"id" gorm:"primaryKey;size:36"`
	UserID                int64     `json:"user_id" gorm:"index;not null"`
	CurrentRefreshTokenID string    `json:"-" gorm:"size:36;not null"`
	ExpiresAt             time.Time `json:"expires_at" gorm:"index;not null"`
	LastActivityAt        time.Time `json:"last_activity_at"`
	CreatedAt             time.Time `json:"created_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
