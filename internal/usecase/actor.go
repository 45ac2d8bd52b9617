package usecase

import (
	"context"

	"erp/internal/domain/model"
	repo "erp/internal/repository"
	"erp/internal/usecase/oplog"
)

// 操作した人（JWT から取り出したもの）
type Actor struct {
	ID   int64
	Kind model.ActorKind
}

func (a Actor) valid() bool {
	return a.ID > 0 && (a.Kind == model.ActorAdmin || a.Kind == model.ActorCustomer)
}

func (a Actor) id() *int64 {
	id := a.ID
	return &id
}

// 操作ログの入口。oplog.Service が満たす。
type OperationLogger interface {
	LogOperation(ctx context.Context, op oplog.Operation) bool
	LogOperationTx(ctx context.Context, logs repo.OperationLogRepository, op oplog.Operation) bool
}
