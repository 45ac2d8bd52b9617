package repository

import (
	"context"
	"errors"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"gorm.io/gorm"
)

type AdministratorGormRepository struct {
	db *gorm.DB
}

func NewAdministratorGormRepository(db *gorm.DB) *AdministratorGormRepository {
	return &AdministratorGormRepository{db: db}
}

func (r *AdministratorGormRepository) FindByID(ctx context.Context, id int64) (model.Administrator, error) {
	var a model.Administrator
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Administrator{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Administrator{}, err
	}
	return a, nil
}

func (r *AdministratorGormRepository) Update(ctx context.Context, a model.Administrator) error {
	res := r.db.WithContext(ctx).Model(&model.Administrator{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"admin_account":       a.AdminAccount,
			"admin_name":          a.AdminName,
			"staff_no":            a.StaffNo,
			"admin_password":      a.PasswordHash,
			"permission_level_id": a.PermissionLevelID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
