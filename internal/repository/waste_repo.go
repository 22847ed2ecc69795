package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"wastetrack/internal/domain"
)

type WasteRepository struct {
	db *gorm.DB
}

func NewWasteRepository(db *gorm.DB) *WasteRepository {
	return &WasteRepository{db: db}
}

// WasteSummaryRow is one aggregation bucket of the analytics endpoint.
type WasteSummaryRow struct {
	BranchID      int64   `json:"branch_id"`
	ItemID        int64   `json:"item_id"`
	ItemName      string  `json:"item_name"`
	TotalQuantity float64 `json:"total_quantity"`
	Entries       int64   `json:"entries"`
}

func (r *WasteRepository) Create(ctx context.Context, wl *domain.WasteLog) error {
	return r.db.WithContext(ctx).Create(wl).Error
}

func (r *WasteRepository) GetByID(ctx context.Context, id int64) (*domain.WasteLog, error) {
	var wl domain.WasteLog
	if err := r.db.WithContext(ctx).First(&wl, id).Error; err != nil {
		return nil, err
	}
	return &wl, nil
}

func (r *WasteRepository) List(ctx context.Context, branchID *int64, from, to time.Time) ([]domain.WasteLog, error) {
	q := r.db.WithContext(ctx).Order("occurred_at DESC")
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	if !from.IsZero() {
		q = q.Where("occurred_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("occurred_at < ?", to)
	}
	var logs []domain.WasteLog
	err := q.Find(&logs).Error
	return logs, err
}

// Summary aggregates waste per item, joined with the item name so the
// dashboard does not need a second query.
func (r *WasteRepository) Summary(ctx context.Context, branchID *int64, from, to time.Time) ([]WasteSummaryRow, error) {
	q := r.db.WithContext(ctx).
		Table("waste_logs").
		Select("waste_logs.branch_id, waste_logs.item_id, inventory_items.name AS item_name, SUM(waste_logs.quantity) AS total_quantity, COUNT(*) AS entries").
		Joins("JOIN inventory_items ON inventory_items.id = waste_logs.item_id").
		Group("waste_logs.branch_id, waste_logs.item_id, inventory_items.name").
		Order("total_quantity DESC")
	if branchID != nil {
		q = q.Where("waste_logs.branch_id = ?", *branchID)
	}
	if !from.IsZero() {
		q = q.Where("waste_logs.occurred_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("waste_logs.occurred_at < ?", to)
	}
	var rows []WasteSummaryRow
	err := q.Scan(&rows).Error
	return rows, err
}

func (r *WasteRepository) Update(ctx context.Context, wl *domain.WasteLog) error {
	res := r.db.WithContext(ctx).Model(&domain.WasteLog{}).Where("id = ?", wl.ID).Updates(map[string]any{
		"quantity":    wl.Quantity,
		"reason":      wl.Reason,
		"occurred_at": wl.OccurredAt,
		"updated_at":  time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *WasteRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.WasteLog{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
