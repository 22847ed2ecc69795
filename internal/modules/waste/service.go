package waste

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"wastetrack/internal/domain"
	"wastetrack/internal/permission"
	"wastetrack/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	logs  WasteStore
	items ItemGetter
}

func NewService(logs WasteStore, items ItemGetter) *Service {
	return &Service{logs: logs, items: items}
}

// Create records waste against an inventory item. The log inherits the
// item's branch, so a principal can only log waste where it may see the
// item.
func (s *Service) Create(ctx context.Context, p permission.Principal, req CreateWasteLogRequest) (*domain.WasteLog, error) {
	item, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if !permission.Authorize(p, permission.ResourceWaste, permission.ActionCreate, &permission.Target{BranchID: &item.BranchID}) {
		return nil, ErrForbidden
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	wl := &domain.WasteLog{
		BranchID:   item.BranchID,
		ItemID:     item.ID,
		Quantity:   req.Quantity,
		Reason:     req.Reason,
		RecordedBy: p.UserID,
		OccurredAt: occurredAt,
	}
	if err := s.logs.Create(ctx, wl); err != nil {
		return nil, err
	}
	return wl, nil
}

func (s *Service) List(ctx context.Context, p permission.Principal, q ListQuery) ([]domain.WasteLog, error) {
	branchID, err := s.scopeBranch(p, q.BranchID, permission.ActionRead)
	if err != nil {
		return nil, err
	}
	return s.logs.List(ctx, branchID, q.From, q.To)
}

// Summary aggregates waste per item for dashboards.
func (s *Service) Summary(ctx context.Context, p permission.Principal, q ListQuery) ([]repository.WasteSummaryRow, error) {
	branchID, err := s.scopeBranch(p, q.BranchID, permission.ActionRead)
	if err != nil {
		return nil, err
	}
	return s.logs.Summary(ctx, branchID, q.From, q.To)
}

// ExportCSV writes the scoped waste logs as CSV. Quantities keep full
// float precision, timestamps are RFC 3339.
func (s *Service) ExportCSV(ctx context.Context, p permission.Principal, q ListQuery, w io.Writer) error {
	branchID, err := s.scopeBranch(p, q.BranchID, permission.ActionExport)
	if err != nil {
		return err
	}

	logs, err := s.logs.List(ctx, branchID, q.From, q.To)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "branch_id", "item_id", "quantity", "reason", "recorded_by", "occurred_at"}); err != nil {
		return err
	}
	for i := range logs {
		wl := &logs[i]
		rec := []string{
			strconv.FormatInt(wl.ID, 10),
			strconv.FormatInt(wl.BranchID, 10),
			strconv.FormatInt(wl.ItemID, 10),
			strconv.FormatFloat(wl.Quantity, 'f', -1, 64),
			wl.Reason,
			strconv.FormatInt(wl.RecordedBy, 10),
			wl.OccurredAt.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Update touches quantity, reason and timestamp only. Branch admins may
// edit their own entries, global roles may edit any.
func (s *Service) Update(ctx context.Context, p permission.Principal, id int64, req UpdateWasteLogRequest) (*domain.WasteLog, error) {
	wl, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permission.Authorize(p, permission.ResourceWaste, permission.ActionUpdate, &permission.Target{BranchID: &wl.BranchID, OwnerID: &wl.RecordedBy}) {
		return nil, ErrForbidden
	}

	if req.Quantity != nil {
		wl.Quantity = *req.Quantity
	}
	if req.Reason != "" {
		wl.Reason = req.Reason
	}
	if req.OccurredAt != nil {
		wl.OccurredAt = *req.OccurredAt
	}

	if err := s.logs.Update(ctx, wl); err != nil {
		return nil, err
	}
	return wl, nil
}

func (s *Service) Delete(ctx context.Context, p permission.Principal, id int64) error {
	wl, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !permission.Authorize(p, permission.ResourceWaste, permission.ActionDelete, &permission.Target{BranchID: &wl.BranchID, OwnerID: &wl.RecordedBy}) {
		return ErrForbidden
	}
	return s.logs.Delete(ctx, id)
}

// scopeBranch resolves which branch filter a query may use. Branch roles
// are pinned to their own branch regardless of what was asked for.
func (s *Service) scopeBranch(p permission.Principal, requested *int64, act permission.Action) (*int64, error) {
	scope, ok := permission.Lookup(p.Role, permission.ResourceWaste, act)
	if !ok {
		return nil, ErrForbidden
	}
	if scope == permission.ScopeGlobal {
		return requested, nil
	}
	if p.BranchID == nil {
		return nil, ErrForbidden
	}
	return p.BranchID, nil
}
