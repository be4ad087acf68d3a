package repository

import (
	"context"
	"errors"

	"diskregistry/internal/model"

	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) error
	GetByUsername(ctx context.Context, username string) (*model.Admin, error)
	GetByUserId(ctx context.Context, userId string) (*model.Admin, error)
}

func NewAdminRepository(r *Repository) AdminRepository {
	return &adminRepository{Repository: r}
}

type adminRepository struct {
	*Repository
}

func (r *adminRepository) Create(ctx context.Context, admin *model.Admin) error {
	return r.DB(ctx).Create(admin).Error
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	if err := r.DB(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) GetByUserId(ctx context.Context, userId string) (*model.Admin, error) {
	var admin model.Admin
	if err := r.DB(ctx).Where("user_id = ?", userId).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}
