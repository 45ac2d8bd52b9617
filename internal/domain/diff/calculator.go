package diff

import (
	"fmt"

	"erp/internal/domain/model"
)

// Calculator は1種類のエンティティの差分を計算する。
// 何も変わっていないときは (nil, nil) を返す。
type Calculator interface {
	Compute(kind model.OperationKind, before, after Snapshot) (Document, error)
}

// テーブル -> 計算機
type Registry struct {
	calculators map[model.SubjectTable]Calculator
}

// NewRegistry は4テーブル分の計算機を登録済みで返す
func NewRegistry() *Registry {
	r := &Registry{calculators: map[model.SubjectTable]Calculator{}}
	r.Register(model.SubjectOrders, NewOrderCalculator())
	r.Register(model.SubjectCustomers, NewCustomerCalculator())
	r.Register(model.SubjectProducts, NewProductCalculator())
	r.Register(model.SubjectAdministrators, NewAdminCalculator())
	return r
}

func (r *Registry) Register(table model.SubjectTable, c Calculator) {
	r.calculators[table] = c
}

func (r *Registry) Compute(table model.SubjectTable, kind model.OperationKind, before, after Snapshot) (Document, error) {
	c, ok := r.calculators[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	doc, err := c.Compute(kind, before, after)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", table, kind, err)
	}
	if doc == nil || doc.Empty() {
		return nil, nil
	}
	return doc, nil
}

func requireSnapshot(s Snapshot, which string) error {
	if s == nil {
		return fmt.Errorf("%w: %s snapshot is required", ErrMalformedSnapshot, which)
	}
	return nil
}

func unsupported(kind model.OperationKind) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedOperation, kind)
}
