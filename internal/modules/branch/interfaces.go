package branch

import (
	"context"

	"wastetrack/internal/domain"
)

type BranchStore interface {
	Create(ctx context.Context, b *domain.Branch) error
	GetByID(ctx context.Context, id int64) (*domain.Branch, error)
	List(ctx context.Context) ([]domain.Branch, error)
	Update(ctx context.Context, b *domain.Branch) error
}
