package diff

import (
	"sort"

	"erp/internal/domain/model"
)

var customerFields = []field{
	{name: "username", kind: kindText},
	{name: "company_name", kind: kindText},
	{name: "contact_person", kind: kindText},
	{name: "phone", kind: kindText},
	{name: "email", kind: kindText},
	{name: "address", kind: kindText},
	{name: "viewable_products", kind: kindSet},
	{name: "remark", kind: kindText},
	{name: "reorder_limit_days", kind: kindInt, zeroDisplay: UnlimitedDisplay},
}

type CustomerCalculator struct {
	fields []field
}

func NewCustomerCalculator() *CustomerCalculator {
	return &CustomerCalculator{fields: customerFields}
}

func (c *CustomerCalculator) Compute(kind model.OperationKind, before, after Snapshot) (Document, error) {
	switch kind {
	case model.OperationCreate:
		if err := requireSnapshot(after, "new"); err != nil {
			return nil, err
		}
		return c.whole(after, true), nil
	case model.OperationDelete:
		if err := requireSnapshot(before, "old"); err != nil {
			return nil, err
		}
		return c.whole(before, false), nil
	case model.OperationUpdate:
		if err := requireSnapshot(before, "old"); err != nil {
			return nil, err
		}
		if err := requireSnapshot(after, "new"); err != nil {
			return nil, err
		}
		d := &CustomerDiff{Customer: customerSection(after)}
		changes := compareFields(c.fields, before, after)
		for _, key := range []string{KeyLineUsers, KeyLineGroups} {
			b, a, ok := bindingSources(before, after, key)
			if !ok {
				continue
			}
			if ch, ok := compareBindings(b, a); ok {
				changes[key] = ch
				// 変わったときは変更後の一覧も載せる
				labels := bindingLabels(parseBindings(a))
				if key == KeyLineUsers {
					d.Customer.LineUsers = labels
				} else {
					d.Customer.LineGroups = labels
				}
			}
		}
		if after.Bool(KeyPasswordChanged) {
			changes["password"] = Change{Before: MaskedDisplay, After: MaskedDisplay}
			d.Customer.PasswordChanged = true
		}
		if changes.Empty() {
			return nil, nil
		}
		d.Customer.Changes = changes
		return d, nil
	}
	return nil, unsupported(kind)
}

func (c *CustomerCalculator) whole(s Snapshot, created bool) Document {
	sec := customerSection(s)
	sec.Changes = describeFields(c.fields, s, created)
	sec.LineUsers = bindingLabels(parseBindings(s.Value(KeyLineUsers)))
	sec.LineGroups = bindingLabels(parseBindings(s.Value(KeyLineGroups)))
	return &CustomerDiff{Customer: sec, whole: true}
}

func customerSection(s Snapshot) CustomerSection {
	id, ok := s.Int("customer_id")
	if !ok {
		id, _ = s.Int("id")
	}
	return CustomerSection{
		ID:            id,
		Username:      s.String("username"),
		CompanyName:   s.String("company_name"),
		ContactPerson: s.String("contact_person"),
	}
}

// LINE のユーザー/グループの紐付け
type binding struct {
	id    string
	label string
}

// 呼び出し側が line_changes で前後を渡してきたらそちらを優先する。
// どちらかのスナップショットにキーがなければ比較しない。
func bindingSources(before, after Snapshot, key string) (any, any, bool) {
	if lc, ok := after.Value(KeyLineChanges).(map[string]any); ok {
		if pair, ok := lc[key].(map[string]any); ok {
			return pair["before"], pair["after"], true
		}
	}
	if !before.Has(key) || !after.Has(key) {
		return nil, nil, false
	}
	return before.Value(key), after.Value(key), true
}

func parseBindings(v any) []binding {
	var items []any
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		items = t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	case []map[string]any:
		for _, m := range t {
			items = append(items, m)
		}
	case []Snapshot:
		for _, m := range t {
			items = append(items, map[string]any(m))
		}
	default:
		return nil
	}

	out := make([]binding, 0, len(items))
	seen := map[string]struct{}{}
	for _, item := range items {
		var b binding
		switch t := item.(type) {
		case map[string]any:
			s := Snapshot(t)
			for _, k := range []string{"line_user_id", "line_group_id", "id"} {
				if b.id = s.String(k); b.id != "" {
					break
				}
			}
			for _, k := range []string{"display_name", "group_name", "name"} {
				if b.label = s.String(k); b.label != "" {
					break
				}
			}
		default:
			b.id = toString(t)
		}
		if b.id == "" {
			continue
		}
		if b.label == "" {
			b.label = b.id
		}
		if _, ok := seen[b.id]; ok {
			continue
		}
		seen[b.id] = struct{}{}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func bindingLabels(bs []binding) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.label)
	}
	return out
}

// ID の集合で比べる。並び順の違いは変更ではない。
func compareBindings(before, after any) (Change, bool) {
	b, a := parseBindings(before), parseBindings(after)
	if len(b) == len(a) {
		same := true
		for i := range b {
			if b[i].id != a[i].id {
				same = false
				break
			}
		}
		if same {
			return Change{}, false
		}
	}
	return Change{Before: bindingLabels(b), After: bindingLabels(a)}, true
}
