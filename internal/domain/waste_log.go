package domain

import "time"

type WasteLog struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	BranchID   int64     `json:"branch_id" gorm:"index;not null"`
	ItemID     int64     `json:"item_id" gorm:"index;not null"`
	Quantity   float64   `json:"quantity"`
	Reason     string    `json:"reason" gorm:"size:255"`
	RecordedBy int64     `json:"recorded_by" gorm:"index;not null"`
	OccurredAt time.Time `json:"occurred_at" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
