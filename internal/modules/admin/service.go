package admin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"wastetrack/internal/domain"
	"wastetrack/internal/pkg/password"
	"wastetrack/internal/repository"
)

// Service manages principals. Every write re-checks the assignment
// invariant: a branch role carries exactly one existing branch, a global
// role carries none.
type Service struct {
	users    UserStore
	branches BranchChecker
	sessions SessionInvalidator
	hasher   *password.Hasher
}

func NewService(users UserStore, branches BranchChecker, sessions SessionInvalidator, hasher *password.Hasher) *Service {
	return &Service{
		users:    users,
		branches: branches,
		sessions: sessions,
		hasher:   hasher,
	}
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	role := domain.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := s.checkBranchAssignment(ctx, role, req.BranchID); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         req.Name,
		Role:         role,
		BranchID:     req.BranchID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, userID int64, req UpdateUserRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}

	role := user.Role
	if req.Role != "" {
		role = domain.Role(req.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
	}

	branchID := user.BranchID
	if req.Role != "" || req.BranchID != nil {
		branchID = req.BranchID
	}

	if err := s.checkBranchAssignment(ctx, role, branchID); err != nil {
		return nil, err
	}

	user.Role = role
	user.BranchID = branchID
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// DeleteUser kills the principal's sessions before removing the row, so
// no live token survives its owner.
func (s *Service) DeleteUser(ctx context.Context, userID int64) error {
	if _, err := s.sessions.InvalidateAllForUser(ctx, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}

// ForcePasswordReset replaces the password with a generated one and
// destroys every session. The temporary password is returned exactly once
// and never stored in the clear.
func (s *Service) ForcePasswordReset(ctx context.Context, userID int64) (string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return "", err
	}

	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	temp := hex.EncodeToString(buf)

	hash, err := s.hasher.Hash(temp)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return "", err
	}
	if _, err := s.sessions.InvalidateAllForUser(ctx, userID); err != nil {
		return "", err
	}

	return temp, nil
}

func (s *Service) checkBranchAssignment(ctx context.Context, role domain.Role, branchID *int64) error {
	if role.RequiresBranch() {
		if branchID == nil {
			return ErrBranchRequired
		}
		ok, err := s.branches.Exists(ctx, *branchID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBranchNotFound
		}
		return nil
	}
	if branchID != nil {
		return ErrBranchNotAllowed
	}
	return nil
}
