package domain

import "time"

type InventoryItem struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	BranchID      int64     `json:"branch_id" gorm:"index;not null"`
	Name          string    `json:"name" gorm:"size:255;not null"`
	Unit          string    `json:"unit" gorm:"size:32"`
	Quantity      float64   `json:"quantity"`
	UnitCostCents int64     `json:"unit_cost_cents"`
	CreatedBy     int64     `json:"created_by" gorm:"index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
