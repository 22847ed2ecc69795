package branch

type CreateBranchRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=255"`
	Address string `json:"address" binding:"omitempty,max=512"`
}

type UpdateBranchRequest struct {
	Name    string `json:"name" binding:"omitempty,min=2,max=255"`
	Address string `json:"address" binding:"omitempty,max=512"`
}
