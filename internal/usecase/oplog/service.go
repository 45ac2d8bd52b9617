package oplog

import (
	"context"
	"fmt"

	"erp/internal/domain/diff"
	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"go.uber.org/zap"
)

// 業務処理から渡される1回分の操作。スナップショットは部分更新ではなく全体。
type Operation struct {
	Table     model.SubjectTable
	Kind      model.OperationKind
	SubjectID int64
	Old       diff.Snapshot
	New       diff.Snapshot

	ActorID   *int64
	ActorKind model.ActorKind
}

// Service は差分計算と書き込みの入口。
// 注文は Coalescer 経由、それ以外はその場で書く。
type Service struct {
	calc      *diff.Registry
	writer    *Writer
	coalescer *Coalescer
	log       *zap.Logger
}

func NewService(calc *diff.Registry, writer *Writer, coalescer *Coalescer, log *zap.Logger) *Service {
	return &Service{calc: calc, writer: writer, coalescer: coalescer, log: log}
}

// LogOperation はログが書かれた（注文なら受け付けられた）とき true。
// 失敗しても呼び出し側の処理は止めない。
func (s *Service) LogOperation(ctx context.Context, op Operation) bool {
	return s.LogOperationTx(ctx, nil, op)
}

// LogOperationTx は注文以外を呼び出し側の Tx 内の repository に書く。
// logs が nil なら Writer 既定の repository。
func (s *Service) LogOperationTx(ctx context.Context, logs repo.OperationLogRepository, op Operation) bool {
	doc, err := s.compute(op)
	if err != nil {
		s.log.Error("compute operation diff",
			zap.Error(err),
			zap.String("subject_table", string(op.Table)),
			zap.String("operation_kind", string(op.Kind)),
			zap.Int64("subject_id", op.SubjectID),
		)
		return false
	}
	if doc == nil {
		s.log.Debug("no change, skip operation log",
			zap.String("subject_table", string(op.Table)),
			zap.Int64("subject_id", op.SubjectID),
		)
		return false
	}

	e := Entry{
		Table:     op.Table,
		Kind:      op.Kind,
		SubjectID: op.SubjectID,
		Document:  doc,
		ActorID:   op.ActorID,
		ActorKind: op.ActorKind,
	}
	if op.Table == model.SubjectOrders && s.coalescer != nil {
		return s.coalescer.Submit(ctx, e)
	}
	if logs == nil {
		return s.writer.Write(ctx, e)
	}
	return s.writer.WriteTo(ctx, logs, e)
}

// 計算機の panic も ErrDiffComputation にする
func (s *Service) compute(op Operation) (doc diff.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: panic: %v", ErrDiffComputation, r)
		}
	}()
	doc, err = s.calc.Compute(op.Table, op.Kind, op.Old, op.New)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiffComputation, err)
	}
	return doc, nil
}
