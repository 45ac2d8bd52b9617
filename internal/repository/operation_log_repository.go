package repository

import (
	"context"
	"time"

	"erp/internal/domain/model"
)

// 操作ログの書き込み（追記のみ）
type OperationLogRepository interface {
	Create(ctx context.Context, log *model.OperationLog) error
}

// 操作ログ一覧の絞り込み条件。すべて AND。
type OperationLogFilter struct {
	SubjectTable  *model.SubjectTable
	OperationKind *model.OperationKind
	ActorKind     *model.ActorKind
	ActorID       *int64
	DateFrom      *time.Time
	// この時刻より前（含まない）
	DateTo *time.Time

	// 対象ラベルと差分本文への部分一致
	Search string
	// true ならラベルだけを検索する
	LabelOnly bool
}

// 一覧用の1行。ラベルと操作者名は検索時に解決する。
type OperationLogRow struct {
	ID            int64     `db:"id"`
	SubjectTable  string    `db:"subject_table"`
	OperationKind string    `db:"operation_kind"`
	SubjectID     int64     `db:"subject_id"`
	DiffDocument  []byte    `db:"diff_document"`
	ActorID       *int64    `db:"actor_id"`
	ActorKind     *string   `db:"actor_kind"`
	CreatedAt     time.Time `db:"created_at"`
	SubjectLabel  string    `db:"subject_label"`
	ActorName     string    `db:"actor_name"`
}

// 操作ログの読み取り。件数と行は別々に取る。
type OperationLogQuery interface {
	Count(ctx context.Context, f OperationLogFilter) (int64, error)
	List(ctx context.Context, f OperationLogFilter, limit int, offset int) ([]OperationLogRow, error)
}
