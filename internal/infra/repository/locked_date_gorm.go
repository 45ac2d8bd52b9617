package repository

import (
	"context"
	"errors"
	"time"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"gorm.io/gorm"
)

type LockedDateGormRepository struct {
	db *gorm.DB
}

func NewLockedDateGormRepository(db *gorm.DB) *LockedDateGormRepository {
	return &LockedDateGormRepository{db: db}
}

func (r *LockedDateGormRepository) Create(ctx context.Context, date time.Time) (model.LockedDate, error) {
	ld := model.LockedDate{Date: date}
	err := r.db.WithContext(ctx).Create(&ld).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.LockedDate{}, repo.ErrDuplicate
	}
	if err != nil {
		return model.LockedDate{}, err
	}
	return ld, nil
}

func (r *LockedDateGormRepository) FindByID(ctx context.Context, id int64) (model.LockedDate, error) {
	var ld model.LockedDate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ld).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.LockedDate{}, repo.ErrNotFound
	}
	if err != nil {
		return model.LockedDate{}, err
	}
	return ld, nil
}

func (r *LockedDateGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.LockedDate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
