package repository

import (
	"context"

	"erp/internal/domain/model"
)

type AdministratorRepository interface {
	FindByID(ctx context.Context, id int64) (model.Administrator, error)
	Update(ctx context.Context, a model.Administrator) error
}
