package inventory

type CreateItemRequest struct {
	BranchID      int64   `json:"branch_id" binding:"required,gt=0"`
	Name          string  `json:"name" binding:"required,min=2,max=255"`
	Unit          string  `json:"unit" binding:"omitempty,max=32"`
	Quantity      float64 `json:"quantity" binding:"gte=0"`
	UnitCostCents int64   `json:"unit_cost_cents" binding:"gte=0"`
}

// UpdateItemRequest uses pointers for the numeric fields so zero is a
// settable value, not an omitted one.
type UpdateItemRequest struct {
	Name          string   `json:"name" binding:"omitempty,min=2,max=255"`
	Unit          string   `json:"unit" binding:"omitempty,max=32"`
	Quantity      *float64 `json:"quantity" binding:"omitempty,gte=0"`
	UnitCostCents *int64   `json:"unit_cost_cents" binding:"omitempty,gte=0"`
}
