package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wastetrack/internal/domain"
)

func testUser(email string, role domain.Role, branchID *int64) *domain.User {
	return &domain.User{
		Email:        email,
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
		Role:         role,
		BranchID:     branchID,
		Name:         "Test User",
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testUser("admin@wastetrack.kz", domain.RoleSuperAdmin, nil)))

	err := repo.Create(ctx, testUser("ADMIN@wastetrack.kz", domain.RoleSuperAdmin, nil))
	assert.ErrorIs(t, err, ErrDuplicate, "emails are unique case-insensitively")
}

func TestUserGetByEmail_CaseInsensitive(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testUser("Admin@WasteTrack.kz", domain.RoleSuperAdmin, nil)))

	user, err := repo.GetByEmail(ctx, "admin@wastetrack.kz")
	require.NoError(t, err)
	assert.Equal(t, "admin@wastetrack.kz", user.Email)
}

func TestUserGetByID_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserUpdate_ChangesBranchAssignment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	branch := int64(2)
	u := testUser("manager@wastetrack.kz", domain.RoleBranchAdmin, &branch)
	require.NoError(t, repo.Create(ctx, u))

	u.Role = domain.RoleSuperAdmin
	u.BranchID = nil
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, got.Role)
	assert.Nil(t, got.BranchID, "clearing the branch must persist as NULL")
}

func TestUserUpdatePasswordHash(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	u := testUser("admin@wastetrack.kz", domain.RoleSuperAdmin, nil)
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.UpdatePasswordHash(ctx, u.ID, "$2a$12$replacedreplacedreplac"))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$12$replacedreplacedreplac", got.PasswordHash)
}

func TestUserDelete(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	u := testUser("admin@wastetrack.kz", domain.RoleSuperAdmin, nil)
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.Delete(ctx, u.ID))

	err := repo.Delete(ctx, u.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
