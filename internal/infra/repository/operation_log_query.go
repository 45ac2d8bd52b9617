package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repo "erp/internal/repository"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
)

// ロック日の差分に埋め込まれた日付
const lockedDateSQL = `ol.diff_document->'message'->'locked_date'->>'date'`

// 対象ラベル。結合先のテーブルを優先し、消えていれば差分本文、最後は subject_id。
const subjectLabelSQL = `COALESCE(NULLIF(CASE
	WHEN ol.subject_table = 'orders' THEN COALESCE(o.order_number, ol.diff_document->'message'->>'order_number')
	WHEN ol.subject_table = 'products' AND ol.diff_document->'message'->'locked_date' IS NOT NULL THEN ` + lockedDateSQL + `
	WHEN ol.subject_table = 'products' THEN COALESCE(p.name, ol.diff_document->'message'->'product'->>'name')
	WHEN ol.subject_table = 'customers' THEN COALESCE(c.company_name, ol.diff_document->'message'->'customer'->>'company_name')
	WHEN ol.subject_table = 'administrators' THEN COALESCE(a.staff_no, ol.diff_document->'message'->'admin'->>'staff_no')
END, ''), ol.subject_id::text)`

// 操作者の表示名。システム操作は "-"。
const actorNameSQL = `COALESCE(CASE
	WHEN ol.actor_kind = 'admin' THEN actor_admin.admin_name
	WHEN ol.actor_kind = 'customer' THEN actor_customer.company_name
END, '-')`

// goqu で組み立てる操作ログの検索
type OperationLogGoquQuery struct {
	db *goqu.Database
}

func NewOperationLogQuery(sqlDB *sql.DB) *OperationLogGoquQuery {
	return &OperationLogGoquQuery{db: goqu.New("postgres", sqlDB)}
}

func (q *OperationLogGoquQuery) Count(ctx context.Context, f repo.OperationLogFilter) (int64, error) {
	total, err := q.filtered(f).CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("count operation logs: %w", err)
	}
	return total, nil
}

func (q *OperationLogGoquQuery) List(ctx context.Context, f repo.OperationLogFilter, limit int, offset int) ([]repo.OperationLogRow, error) {
	rows := []repo.OperationLogRow{}
	if err := q.listDataset(f, limit, offset).ScanStructsContext(ctx, &rows); err != nil {
		return []repo.OperationLogRow{}, fmt.Errorf("list operation logs: %w", err)
	}
	return rows, nil
}

func (q *OperationLogGoquQuery) listDataset(f repo.OperationLogFilter, limit int, offset int) *goqu.SelectDataset {
	if limit < 1 {
		limit = 1
	}
	if offset < 0 {
		offset = 0
	}
	return q.filtered(f).
		Select(
			goqu.I("ol.id"),
			goqu.I("ol.subject_table"),
			goqu.I("ol.operation_kind"),
			goqu.I("ol.subject_id"),
			goqu.I("ol.diff_document"),
			goqu.I("ol.actor_id"),
			goqu.I("ol.actor_kind"),
			goqu.I("ol.created_at"),
			goqu.L(subjectLabelSQL).As("subject_label"),
			goqu.L(actorNameSQL).As("actor_name"),
		).
		Order(goqu.I("ol.created_at").Desc(), goqu.I("ol.id").Desc()).
		Limit(uint(limit)).
		Offset(uint(offset))
}

func (q *OperationLogGoquQuery) filtered(f repo.OperationLogFilter) *goqu.SelectDataset {
	ds := q.db.From(goqu.T("operation_logs").As("ol")).
		LeftJoin(goqu.T("orders").As("o"), goqu.On(
			goqu.I("ol.subject_table").Eq("orders"),
			goqu.I("o.id").Eq(goqu.I("ol.subject_id")),
		)).
		LeftJoin(goqu.T("products").As("p"), goqu.On(
			goqu.I("ol.subject_table").Eq("products"),
			goqu.I("p.id").Eq(goqu.I("ol.subject_id")),
		)).
		LeftJoin(goqu.T("customers").As("c"), goqu.On(
			goqu.I("ol.subject_table").Eq("customers"),
			goqu.I("c.id").Eq(goqu.I("ol.subject_id")),
		)).
		LeftJoin(goqu.T("administrators").As("a"), goqu.On(
			goqu.I("ol.subject_table").Eq("administrators"),
			goqu.I("a.id").Eq(goqu.I("ol.subject_id")),
		)).
		LeftJoin(goqu.T("administrators").As("actor_admin"), goqu.On(
			goqu.I("ol.actor_kind").Eq("admin"),
			goqu.I("actor_admin.id").Eq(goqu.I("ol.actor_id")),
		)).
		LeftJoin(goqu.T("customers").As("actor_customer"), goqu.On(
			goqu.I("ol.actor_kind").Eq("customer"),
			goqu.I("actor_customer.id").Eq(goqu.I("ol.actor_id")),
		)).
		Prepared(true)

	if conds := filterConditions(f); len(conds) > 0 {
		ds = ds.Where(conds...)
	}
	return ds
}

func filterConditions(f repo.OperationLogFilter) []exp.Expression {
	var conds []exp.Expression
	if f.SubjectTable != nil {
		conds = append(conds, goqu.I("ol.subject_table").Eq(string(*f.SubjectTable)))
	}
	if f.OperationKind != nil {
		conds = append(conds, goqu.I("ol.operation_kind").Eq(string(*f.OperationKind)))
	}
	if f.ActorKind != nil {
		conds = append(conds, goqu.I("ol.actor_kind").Eq(string(*f.ActorKind)))
	}
	if f.ActorID != nil {
		conds = append(conds, goqu.I("ol.actor_id").Eq(*f.ActorID))
	}
	if f.DateFrom != nil {
		conds = append(conds, goqu.I("ol.created_at").Gte(*f.DateFrom))
	}
	if f.DateTo != nil {
		conds = append(conds, goqu.I("ol.created_at").Lt(*f.DateTo))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		conds = append(conds, searchCondition(search, f.LabelOnly))
	}
	return conds
}

// ラベル、（label_only でなければ）差分本文、日付として読めればロック日も見る
func searchCondition(term string, labelOnly bool) exp.Expression {
	pattern := "%" + escapeLike(term) + "%"
	ors := []exp.Expression{
		goqu.L(subjectLabelSQL).ILike(pattern),
	}
	if !labelOnly {
		ors = append(ors, goqu.L("ol.diff_document::text").ILike(pattern))
	}
	if g, value, ok := parseDateTerm(term); ok {
		ors = append(ors, lockedDateCondition(g, value))
	}
	return goqu.Or(ors...)
}

type dateGranularity int

const (
	monthDay dateGranularity = iota + 1
	yearMonth
	fullDate
)

// "12-25", "2024-12", "2024-12-25" を日付の一部として読む
func parseDateTerm(term string) (dateGranularity, string, bool) {
	term = strings.TrimSpace(term)
	layouts := []struct {
		g      dateGranularity
		layout string
	}{
		{fullDate, "2006-01-02"},
		{yearMonth, "2006-01"},
		{monthDay, "01-02"},
	}
	for _, l := range layouts {
		if len(term) != len(l.layout) {
			continue
		}
		if _, err := time.Parse(l.layout, term); err == nil {
			return l.g, term, true
		}
	}
	return 0, "", false
}

func lockedDateCondition(g dateGranularity, value string) exp.Expression {
	switch g {
	case monthDay:
		return goqu.L("right("+lockedDateSQL+", 5) = ?", value)
	case yearMonth:
		return goqu.L("left("+lockedDateSQL+", 7) = ?", value)
	}
	return goqu.L(lockedDateSQL+" = ?", value)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
