package diff

import (
	"erp/internal/domain/model"
)

var orderLineFields = []field{
	{name: "quantity", kind: kindInt},
	{name: "status", kind: kindStatus},
	{name: "shipping_date", kind: kindDate},
	{name: "supplier_note", kind: kindText},
}

// 注文の差分。明細は detail_id で突き合わせる。
type OrderCalculator struct {
	lineFields []field
}

func NewOrderCalculator() *OrderCalculator {
	return &OrderCalculator{lineFields: orderLineFields}
}

func (c *OrderCalculator) Compute(kind model.OperationKind, before, after Snapshot) (Document, error) {
	switch kind {
	case model.OperationCreate:
		if err := requireSnapshot(after, "new"); err != nil {
			return nil, err
		}
		return c.whole(after, true)
	case model.OperationDelete:
		if err := requireSnapshot(before, "old"); err != nil {
			return nil, err
		}
		return c.whole(before, false)
	case model.OperationUpdate, model.OperationAudit:
		if err := requireSnapshot(before, "old"); err != nil {
			return nil, err
		}
		if err := requireSnapshot(after, "new"); err != nil {
			return nil, err
		}
		d, err := c.compare(before, after)
		if err != nil || d.Empty() {
			return nil, err
		}
		return d, nil
	}
	return nil, unsupported(kind)
}

func (c *OrderCalculator) whole(s Snapshot, created bool) (Document, error) {
	lines, err := s.List("products")
	if err != nil {
		return nil, err
	}
	d := &OrderDiff{
		OrderNumber: s.String("order_number"),
		Products:    make([]OrderLine, 0, len(lines)),
		Status:      &OrderStatus{Value: StatusLabel(s.String("status"))},
		whole:       true,
	}
	for _, l := range lines {
		id, name := lineIdentity(l)
		d.Products = append(d.Products, OrderLine{
			Name:     name,
			DetailID: id,
			Changes:  describeFields(c.lineFields, l, created),
		})
	}
	return d, nil
}

func (c *OrderCalculator) compare(before, after Snapshot) (*OrderDiff, error) {
	d := &OrderDiff{
		OrderNumber: after.String("order_number"),
		Products:    []OrderLine{},
	}
	if d.OrderNumber == "" {
		d.OrderNumber = before.String("order_number")
	}

	// 明細キーがない側は比較しない（注文ヘッダだけの更新）
	if before.Has("products") && after.Has("products") {
		oldLines, err := before.List("products")
		if err != nil {
			return nil, err
		}
		newLines, err := after.List("products")
		if err != nil {
			return nil, err
		}
		old := make(map[int64]Snapshot, len(oldLines))
		for _, l := range oldLines {
			id, _ := lineIdentity(l)
			old[id] = l
		}
		seen := make(map[int64]struct{}, len(newLines))
		for _, l := range newLines {
			id, name := lineIdentity(l)
			seen[id] = struct{}{}
			var changes Changes
			if prev, ok := old[id]; ok {
				changes = compareFields(c.lineFields, prev, l)
			} else {
				changes = describeFields(c.lineFields, l, true)
			}
			if changes.Empty() {
				continue
			}
			d.Products = append(d.Products, OrderLine{Name: name, DetailID: id, Changes: changes})
		}
		for _, l := range oldLines {
			id, name := lineIdentity(l)
			if _, ok := seen[id]; ok {
				continue
			}
			d.Products = append(d.Products, OrderLine{Name: name, DetailID: id, Changes: describeFields(c.lineFields, l, false)})
		}
	}

	status := field{name: "status", kind: kindStatus}
	if before.Has("status") && after.Has("status") && status.normalize(before) != status.normalize(after) {
		d.Status = &OrderStatus{Change: &Change{Before: status.display(before), After: status.display(after)}}
	}
	return d, nil
}

func lineIdentity(l Snapshot) (int64, string) {
	id, ok := l.Int("detail_id")
	if !ok {
		id, _ = l.Int("id")
	}
	name := l.String("product_name")
	if name == "" {
		name = l.String("name")
	}
	return id, name
}
