package diff

import (
	"erp/internal/domain/model"
)

var productFields = []field{
	{name: "name", kind: kindText},
	{name: "description", kind: kindText},
	{name: "min_order_qty", kind: kindInt},
	{name: "max_order_qty", kind: kindInt},
	{name: "product_unit", kind: kindText},
	{name: "shipping_time", kind: kindInt},
	{name: "special_date", kind: kindBool},
	{name: "status", kind: kindStatus},
	{name: "image", key: "image_original_name", pathKey: "image_url", kind: kindFile},
	{name: "document", key: "document_original_name", pathKey: "document_url", kind: kindFile},
}

// 商品と、商品側で管理するロック日の差分
type ProductCalculator struct {
	fields []field
}

func NewProductCalculator() *ProductCalculator {
	return &ProductCalculator{fields: productFields}
}

func (c *ProductCalculator) Compute(kind model.OperationKind, before, after Snapshot) (Document, error) {
	if kind == model.OperationLockDate || kind == model.OperationUnlockDate || isLockedDate(before) || isLockedDate(after) {
		return lockedDateDiff(kind, before, after)
	}

	switch kind {
	case model.OperationCreate:
		if err := requireSnapshot(after, "new"); err != nil {
			return nil, err
		}
		sec := productSection(after)
		sec.Changes = describeFields(c.fields, after, true)
		return &ProductDiff{Product: &sec, whole: true}, nil
	case model.OperationDelete:
		if err := requireSnapshot(before, "old"); err != nil {
			return nil, err
		}
		sec := productSection(before)
		sec.Changes = describeFields(c.fields, before, false)
		return &ProductDiff{Product: &sec, whole: true}, nil
	case model.OperationUpdate:
		if err := requireSnapshot(before, "old"); err != nil {
			return nil, err
		}
		if err := requireSnapshot(after, "new"); err != nil {
			return nil, err
		}
		changes := compareFields(c.fields, before, after)
		if changes.Empty() {
			return nil, nil
		}
		sec := productSection(after)
		sec.Changes = changes
		return &ProductDiff{Product: &sec}, nil
	}
	return nil, unsupported(kind)
}

func productSection(s Snapshot) ProductSection {
	id, ok := s.Int("product_id")
	if !ok {
		id, _ = s.Int("id")
	}
	return ProductSection{ID: id, Name: s.String("name")}
}

func isLockedDate(s Snapshot) bool {
	return s.String(KeyRecordType) == RecordTypeLockedDate
}

func lockedDateDiff(kind model.OperationKind, before, after Snapshot) (Document, error) {
	var (
		s      Snapshot
		action string
	)
	switch kind {
	case model.OperationLockDate, model.OperationCreate:
		s, action = after, LockAction
	case model.OperationUnlockDate, model.OperationDelete:
		s, action = before, UnlockAction
	default:
		return nil, unsupported(kind)
	}
	// 片方しか渡されないこともある
	if s == nil {
		if after != nil {
			s = after
		} else {
			s = before
		}
	}
	if err := requireSnapshot(s, "locked date"); err != nil {
		return nil, err
	}
	id, _ := s.Int("id")
	date := toDate(s.Value("date"))
	if date == "" {
		date = toDate(s.Value("locked_date"))
	}
	return &ProductDiff{LockedDate: &LockedDateSection{ID: id, Date: date, Action: action}}, nil
}
