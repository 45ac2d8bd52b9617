package oplog

import (
	"context"
	"encoding/json"
	"fmt"

	"erp/internal/domain/diff"
	repo "erp/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// 一覧の1件
type LogView struct {
	ID            int64           `json:"id"`
	SubjectTable  string          `json:"subject_table"`
	OperationKind string          `json:"operation_kind"`
	SubjectID     int64           `json:"subject_id"`
	DiffDocument  json.RawMessage `json:"diff_document"`
	ActorID       *int64          `json:"actor_id"`
	ActorKind     *string         `json:"actor_kind"`
	ActorName     string          `json:"actor_name"`
	SubjectLabel  string          `json:"subject_label"`
	CreatedAt     string          `json:"created_at"`
}

type LogPage struct {
	Entries    []LogView `json:"entries"`
	TotalCount int64     `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

type QueryEngine struct {
	q   repo.OperationLogQuery
	log *zap.Logger
}

func NewQueryEngine(q repo.OperationLogQuery, log *zap.Logger) *QueryEngine {
	return &QueryEngine{q: q, log: log}
}

// GetLogs は新しい順に1ページ分返す。
// 件数と行の取得はそれぞれ失敗しても空で返し、エラーにはしない。
func (e *QueryEngine) GetLogs(ctx context.Context, f repo.OperationLogFilter, page int, pageSize int) LogPage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total, err := e.q.Count(ctx, f)
	if err != nil {
		e.log.Error("count operation logs", zap.Error(fmt.Errorf("%w: %w", ErrQuery, err)))
		total = 0
	}

	rows, err := e.q.List(ctx, f, pageSize, (page-1)*pageSize)
	if err != nil {
		e.log.Error("list operation logs", zap.Error(fmt.Errorf("%w: %w", ErrQuery, err)))
		rows = nil
	}

	out := LogPage{
		Entries:    make([]LogView, 0, len(rows)),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
	}
	for _, r := range rows {
		out.Entries = append(out.Entries, toLogView(r))
	}
	return out
}

// ceil(total / size)、最低 1
func TotalPages(total int64, size int) int {
	if size < 1 || total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

func toLogView(r repo.OperationLogRow) LogView {
	v := LogView{
		ID:            r.ID,
		SubjectTable:  r.SubjectTable,
		OperationKind: r.OperationKind,
		SubjectID:     r.SubjectID,
		ActorID:       r.ActorID,
		ActorKind:     r.ActorKind,
		ActorName:     r.ActorName,
		SubjectLabel:  r.SubjectLabel,
		CreatedAt:     r.CreatedAt.Format(diff.DateTimeLayout),
	}
	if json.Valid(r.DiffDocument) {
		v.DiffDocument = json.RawMessage(r.DiffDocument)
	}
	if v.ActorName == "" {
		v.ActorName = diff.EmptyDisplay
	}
	return v
}
