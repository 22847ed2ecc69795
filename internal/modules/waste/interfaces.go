package waste

import (
	"context"
	"time"

	"wastetrack/internal/domain"
	"wastetrack/internal/repository"
)

type WasteStore interface {
	Create(ctx context.Context, wl *domain.WasteLog) error
	GetByID(ctx context.Context, id int64) (*domain.WasteLog, error)
	List(ctx context.Context, branchID *int64, from, to time.Time) ([]domain.WasteLog, error)
	Summary(ctx context.Context, branchID *int64, from, to time.Time) ([]repository.WasteSummaryRow, error)
	Update(ctx context.Context, wl *domain.WasteLog) error
	Delete(ctx context.Context, id int64) error
}

type ItemGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error)
}
