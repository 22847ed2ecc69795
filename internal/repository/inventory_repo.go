package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"wastetrack/internal/domain"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *InventoryRepository) GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns items for one branch, or all branches when branchID is
// nil (global readers only).
func (r *InventoryRepository) List(ctx context.Context, branchID *int64) ([]domain.InventoryItem, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	var items []domain.InventoryItem
	err := q.Find(&items).Error
	return items, err
}

func (r *InventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) error {
	res := r.db.WithContext(ctx).Model(&domain.InventoryItem{}).Where("id = ?", item.ID).Updates(map[string]any{
		"name":            item.Name,
		"unit":            item.Unit,
		"quantity":        item.Quantity,
		"unit_cost_cents": item.UnitCostCents,
		"updated_at":      time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InventoryRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.InventoryItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
