package admin

import "wastetrack/internal/domain"

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,min=2"`
	Role     string `json:"role" binding:"required"`
	BranchID *int64 `json:"branch_id"`
}

// UpdateUserRequest changes profile or assignment fields. When Role is
// present the branch assignment is re-validated against it, so a role
// change must resend branch_id too.
type UpdateUserRequest struct {
	Name     string `json:"name,omitempty" binding:"omitempty,min=2"`
	Role     string `json:"role,omitempty"`
	BranchID *int64 `json:"branch_id"`
}

type UserDTO struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	BranchID  *int64 `json:"branch_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		BranchID:  u.BranchID,
		CreatedAt: u.CreatedAt.Format("2006-01-02"),
	}
}
