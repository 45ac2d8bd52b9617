package repository

import (
	"context"

	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"gorm.io/gorm"
)

type operationLogGormRepository struct {
	db *gorm.DB
}

func NewOperationLogGormRepository(db *gorm.DB) repo.OperationLogRepository {
	return &operationLogGormRepository{db: db}
}

// 外側のTx内ならsavepointになる。失敗しても業務側のTxは巻き戻さない。
func (r *operationLogGormRepository) Create(ctx context.Context, log *model.OperationLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(log).Error
	})
}
