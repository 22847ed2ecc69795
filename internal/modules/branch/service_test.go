package branch

import (
	"context"
	"testing"

	"wastetrack/internal/domain"
	"wastetrack/internal/permission"
	"wastetrack/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockBranchStore struct {
	mock.Mock
}

func (m *MockBranchStore) Create(ctx context.Context, b *domain.Branch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBranchStore) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

func (m *MockBranchStore) List(ctx context.Context) ([]domain.Branch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Branch), args.Error(1)
}

func (m *MockBranchStore) Update(ctx context.Context, b *domain.Branch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func ptrInt64(v int64) *int64 { return &v }

func superAdmin() permission.Principal {
	return permission.Principal{UserID: 1, Role: domain.RoleSuperAdmin}
}

func branchAdmin(branchID int64) permission.Principal {
	return permission.Principal{UserID: 2, Role: domain.RoleBranchAdmin, BranchID: ptrInt64(branchID)}
}

func TestList_GlobalSeesAll(t *testing.T) {
	store := new(MockBranchStore)
	store.On("List", mock.Anything).Return([]domain.Branch{{ID: 1}, {ID: 2}}, nil)
	svc := NewService(store)

	branches, err := svc.List(context.Background(), superAdmin())

	require.NoError(t, err)
	assert.Len(t, branches, 2)
}

func TestList_BranchRoleSeesOnlyOwn(t *testing.T) {
	store := new(MockBranchStore)
	store.On("GetByID", mock.Anything, int64(3)).Return(&domain.Branch{ID: 3, Name: "East"}, nil)
	svc := NewService(store)

	branches, err := svc.List(context.Background(), branchAdmin(3))

	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, int64(3), branches[0].ID)
	store.AssertNotCalled(t, "List", mock.Anything)
}

func TestGet_OtherBranchDenied(t *testing.T) {
	store := new(MockBranchStore)
	store.On("GetByID", mock.Anything, int64(9)).Return(&domain.Branch{ID: 9, Name: "West"}, nil)
	svc := NewService(store)

	_, err := svc.Get(context.Background(), branchAdmin(3), 9)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGet_OwnBranchAllowed(t *testing.T) {
	store := new(MockBranchStore)
	store.On("GetByID", mock.Anything, int64(3)).Return(&domain.Branch{ID: 3, Name: "East"}, nil)
	svc := NewService(store)

	b, err := svc.Get(context.Background(), branchAdmin(3), 3)

	require.NoError(t, err)
	assert.Equal(t, "East", b.Name)
}

func TestGet_NotFoundBeforeAuthCheck(t *testing.T) {
	store := new(MockBranchStore)
	store.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)
	svc := NewService(store)

	_, err := svc.Get(context.Background(), superAdmin(), 404)

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreate_DuplicateName(t *testing.T) {
	store := new(MockBranchStore)
	store.On("Create", mock.Anything, mock.AnythingOfType("*domain.Branch")).Return(repository.ErrDuplicate)
	svc := NewService(store)

	_, err := svc.Create(context.Background(), CreateBranchRequest{Name: "East"})

	assert.ErrorIs(t, err, ErrNameExists)
}

func TestUpdate_PartialFields(t *testing.T) {
	store := new(MockBranchStore)
	store.On("GetByID", mock.Anything, int64(3)).Return(&domain.Branch{ID: 3, Name: "East", Address: "Old st. 1"}, nil)
	store.On("Update", mock.Anything, mock.AnythingOfType("*domain.Branch")).Return(nil)
	svc := NewService(store)

	b, err := svc.Update(context.Background(), 3, UpdateBranchRequest{Address: "New st. 2"})

	require.NoError(t, err)
	assert.Equal(t, "East", b.Name)
	assert.Equal(t, "New st. 2", b.Address)
}
