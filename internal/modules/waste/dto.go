package waste

import "time"

type CreateWasteLogRequest struct {
	ItemID     int64      `json:"item_id" binding:"required,gt=0"`
	Quantity   float64    `json:"quantity" binding:"required,gt=0"`
	Reason     string     `json:"reason" binding:"required,min=2,max=255"`
	OccurredAt *time.Time `json:"occurred_at"`
}

type UpdateWasteLogRequest struct {
	Quantity   *float64   `json:"quantity" binding:"omitempty,gt=0"`
	Reason     string     `json:"reason" binding:"omitempty,min=2,max=255"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// ListQuery narrows listings and aggregations. BranchID is honored only
// for global roles, branch roles are pinned to their own branch.
type ListQuery struct {
	BranchID *int64
	From     time.Time
	To       time.Time
}
