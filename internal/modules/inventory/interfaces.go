package inventory

import (
	"context"

	"wastetrack/internal/domain"
)

type ItemStore interface {
	Create(ctx context.Context, item *domain.InventoryItem) error
	GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error)
	List(ctx context.Context, branchID *int64) ([]domain.InventoryItem, error)
	Update(ctx context.Context, item *domain.InventoryItem) error
	Delete(ctx context.Context, id int64) error
}

type BranchChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
