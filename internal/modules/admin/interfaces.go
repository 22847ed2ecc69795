package admin

import (
	"context"

	"wastetrack/internal/domain"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
}

type BranchChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type SessionInvalidator interface {
	InvalidateAllForUser(ctx context.Context, userID int64) (int64, error)
}
