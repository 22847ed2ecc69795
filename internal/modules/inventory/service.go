package inventory

import (
	"context"

	"wastetrack/internal/domain"
	"wastetrack/internal/permission"
)

type Service struct {
	items    ItemStore
	branches BranchChecker
}

func NewService(items ItemStore, branches BranchChecker) *Service {
	return &Service{items: items, branches: branches}
}

// List scopes the result to the principal's branch unless it holds a
// global grant. Global readers may narrow the result with branchID.
func (s *Service) List(ctx context.Context, p permission.Principal, branchID *int64) ([]domain.InventoryItem, error) {
	scope, ok := permission.Lookup(p.Role, permission.ResourceInventory, permission.ActionRead)
	if !ok {
		return nil, ErrForbidden
	}
	if scope != permission.ScopeGlobal {
		if p.BranchID == nil {
			return nil, ErrForbidden
		}
		branchID = p.BranchID
	}
	return s.items.List(ctx, branchID)
}

func (s *Service) Get(ctx context.Context, p permission.Principal, id int64) (*domain.InventoryItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permission.Authorize(p, permission.ResourceInventory, permission.ActionRead, &permission.Target{BranchID: &item.BranchID}) {
		return nil, ErrForbidden
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, p permission.Principal, req CreateItemRequest) (*domain.InventoryItem, error) {
	if !permission.Authorize(p, permission.ResourceInventory, permission.ActionCreate, &permission.Target{BranchID: &req.BranchID}) {
		return nil, ErrForbidden
	}

	ok, err := s.branches.Exists(ctx, req.BranchID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBranchNotFound
	}

	item := &domain.InventoryItem{
		BranchID:      req.BranchID,
		Name:          req.Name,
		Unit:          req.Unit,
		Quantity:      req.Quantity,
		UnitCostCents: req.UnitCostCents,
		CreatedBy:     p.UserID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, p permission.Principal, id int64, req UpdateItemRequest) (*domain.InventoryItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permission.Authorize(p, permission.ResourceInventory, permission.ActionUpdate, &permission.Target{BranchID: &item.BranchID}) {
		return nil, ErrForbidden
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Unit != "" {
		item.Unit = req.Unit
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.UnitCostCents != nil {
		item.UnitCostCents = *req.UnitCostCents
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, p permission.Principal, id int64) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !permission.Authorize(p, permission.ResourceInventory, permission.ActionDelete, &permission.Target{BranchID: &item.BranchID}) {
		return ErrForbidden
	}
	return s.items.Delete(ctx, id)
}
