package repository

import (
	"context"
	"errors"
	"time"

	"erp/internal/domain/model"
)

var ErrDuplicate = errors.New("duplicate")

// 出荷不可日の約束
type LockedDateRepository interface {
	Create(ctx context.Context, date time.Time) (model.LockedDate, error)
	FindByID(ctx context.Context, id int64) (model.LockedDate, error)
	Delete(ctx context.Context, id int64) error
}
