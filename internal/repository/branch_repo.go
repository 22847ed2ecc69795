package repository

import (
	"context"

	"gorm.io/gorm"

	"wastetrack/internal/domain"
)

type BranchRepository struct {
	db *gorm.DB
}

func NewBranchRepository(db *gorm.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

func (r *BranchRepository) Create(ctx context.Context, b *domain.Branch) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *BranchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	var b domain.Branch
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BranchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	var branches []domain.Branch
	err := r.db.WithContext(ctx).Order("id ASC").Find(&branches).Error
	return branches, err
}

func (r *BranchRepository) Update(ctx context.Context, b *domain.Branch) error {
	res := r.db.WithContext(ctx).Model(&domain.Branch{}).Where("id = ?", b.ID).Updates(map[string]any{
		"name":    b.Name,
		"address": b.Address,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BranchRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Branch{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
