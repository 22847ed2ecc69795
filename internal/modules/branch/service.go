package branch

import (
	"context"
	"errors"

	"wastetrack/internal/domain"
	"wastetrack/internal/permission"
	"wastetrack/internal/repository"
)

type Service struct {
	branches BranchStore
}

func NewService(branches BranchStore) *Service {
	return &Service{branches: branches}
}

// List returns every branch for global readers and only the principal's
// own branch otherwise.
func (s *Service) List(ctx context.Context, p permission.Principal) ([]domain.Branch, error) {
	scope, ok := permission.Lookup(p.Role, permission.ResourceBranch, permission.ActionRead)
	if !ok {
		return nil, ErrForbidden
	}
	if scope == permission.ScopeGlobal {
		return s.branches.List(ctx)
	}
	if p.BranchID == nil {
		return nil, ErrForbidden
	}
	b, err := s.branches.GetByID(ctx, *p.BranchID)
	if err != nil {
		return nil, err
	}
	return []domain.Branch{*b}, nil
}

func (s *Service) Get(ctx context.Context, p permission.Principal, id int64) (*domain.Branch, error) {
	b, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permission.Authorize(p, permission.ResourceBranch, permission.ActionRead, &permission.Target{BranchID: &b.ID}) {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) Create(ctx context.Context, req CreateBranchRequest) (*domain.Branch, error) {
	b := &domain.Branch{
		Name:    req.Name,
		Address: req.Address,
	}
	if err := s.branches.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNameExists
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateBranchRequest) (*domain.Branch, error) {
	b, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		b.Name = req.Name
	}
	if req.Address != "" {
		b.Address = req.Address
	}
	if err := s.branches.Update(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNameExists
		}
		return nil, err
	}
	return b, nil
}
