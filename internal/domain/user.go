package domain

import "time"

type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleBranchAdmin Role = "BRANCH_ADMIN"
)

// RequiresBranch reports whether accounts with this role must be pinned
// to a branch. Branch assignment is validated on every write path, not
// only at creation.
func (r Role) RequiresBranch() bool {
	return r == RoleBranchAdmin
}

func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleBranchAdmin
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:100;not null"`
	Role         Role      `json:"role" gorm:"size:32;not null"`
	BranchID     *int64    `json:"branch_id,omitempty" gorm:"index"`
	Name         string    `json:"name" gorm:"size:255"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
