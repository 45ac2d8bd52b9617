package oplog

import (
	"context"
	"fmt"
	"time"

	"erp/internal/domain/diff"
	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// 1件分の書き込み内容
type Entry struct {
	Table     model.SubjectTable
	Kind      model.OperationKind
	SubjectID int64
	Document  diff.Document

	// システム操作なら nil / 空
	ActorID   *int64
	ActorKind model.ActorKind
}

// Writer は差分を JSON にして operation_logs に1行追加する。
type Writer struct {
	logs repo.OperationLogRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewWriter(logs repo.OperationLogRepository, log *zap.Logger) *Writer {
	return &Writer{logs: logs, log: log, now: time.Now}
}

func (w *Writer) Write(ctx context.Context, e Entry) bool {
	return w.WriteTo(ctx, w.logs, e)
}

// WriteTo は渡された repository（Tx 内のものなど）に書く。
// 差分なしなら書かずに false。失敗も false で、エラーは返さない。
func (w *Writer) WriteTo(ctx context.Context, logs repo.OperationLogRepository, e Entry) bool {
	if e.Document == nil || e.Document.Empty() {
		return false
	}

	body, err := diff.Encode(e.Document)
	if err != nil {
		w.log.Error("encode operation log",
			zap.Error(fmt.Errorf("%w: %w", ErrPersistence, err)),
			zap.String("subject_table", string(e.Table)),
			zap.Int64("subject_id", e.SubjectID),
		)
		return false
	}

	row := &model.OperationLog{
		SubjectTable:  e.Table,
		OperationKind: e.Kind,
		SubjectID:     e.SubjectID,
		DiffDocument:  datatypes.JSON(body),
		ActorID:       e.ActorID,
		CreatedAt:     w.now(),
	}
	if e.ActorKind != "" {
		k := e.ActorKind
		row.ActorKind = &k
	}

	if err := logs.Create(ctx, row); err != nil {
		w.log.Error("write operation log",
			zap.Error(fmt.Errorf("%w: %w", ErrPersistence, err)),
			zap.String("subject_table", string(e.Table)),
			zap.String("operation_kind", string(e.Kind)),
			zap.Int64("subject_id", e.SubjectID),
		)
		return false
	}
	return true
}
