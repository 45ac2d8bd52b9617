package diff

import (
	"encoding/json"
	"fmt"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

// エンティティのスナップショット。キーは保存時のカラム名。
// 特殊キー: line_users, line_groups, line_changes, password_changed, record_type
type Snapshot map[string]any

const (
	KeyLineUsers       = "line_users"
	KeyLineGroups      = "line_groups"
	KeyLineChanges     = "line_changes"
	KeyPasswordChanged = "password_changed"
	KeyRecordType      = "record_type"

	RecordTypeLockedDate = "locked_date"
)

func (s Snapshot) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s[key]
	return ok
}

func (s Snapshot) Value(key string) any {
	if s == nil {
		return nil
	}
	return s[key]
}

// 空白を落とした文字列。nil は空文字。
func (s Snapshot) String(key string) string {
	return toString(s.Value(key))
}

func (s Snapshot) Int(key string) (int64, bool) {
	return toInt(s.Value(key))
}

func (s Snapshot) Bool(key string) bool {
	return toBool(s.Value(key))
}

// ネストしたスナップショット（注文明細など）
func (s Snapshot) List(key string) ([]Snapshot, error) {
	raw := s.Value(key)
	if raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []Snapshot:
		return v, nil
	case []map[string]any:
		out := make([]Snapshot, 0, len(v))
		for _, m := range v {
			out = append(out, Snapshot(m))
		}
		return out, nil
	case []any:
		out := make([]Snapshot, 0, len(v))
		for i, item := range v {
			switch m := item.(type) {
			case map[string]any:
				out = append(out, Snapshot(m))
			case Snapshot:
				out = append(out, m)
			default:
				return nil, fmt.Errorf("%w: %s[%d] is %T", ErrMalformedSnapshot, key, i, item)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s is %T", ErrMalformedSnapshot, key, raw)
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case *string:
		if t == nil {
			return ""
		}
		return strings.TrimSpace(*t)
	case []byte:
		return strings.TrimSpace(string(t))
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(DateTimeLayout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format(DateTimeLayout)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func toInt(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case *int64:
		if t == nil {
			return 0, false
		}
		return *t, true
	case uint:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	case float32:
		return int64(t), float64(t) == math.Trunc(float64(t))
	case float64:
		return int64(t), t == math.Trunc(t)
	case json.Number:
		i, err := t.Int64()
		return i, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	s := toString(v)
	if s == "" {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	}
	return i, true
}

func toBool(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case *bool:
		return t != nil && *t
	}
	if i, ok := toInt(v); ok {
		return i != 0
	}
	switch strings.ToLower(toString(v)) {
	case "true", "yes", "y", "on", "是":
		return true
	}
	return false
}

// 日付部分だけ。空なら ""。
func toDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(DateLayout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format(DateLayout)
	}
	s := toString(v)
	if len(s) >= len(DateLayout) {
		if _, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return s[:len(DateLayout)]
		}
	}
	return s
}

// 名前の集合（順序は無視）
func toStringSet(v any) []string {
	var items []string
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		items = append(items, t...)
	case []any:
		for _, x := range t {
			items = append(items, toString(x))
		}
	case string:
		items = append(items, strings.Split(t, ",")...)
	default:
		items = append(items, toString(t))
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, x := range items {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	sort.Strings(out)
	return out
}

// 保存パスではなく元のファイル名で比べる
func fileName(s Snapshot, nameKey, pathKey string) string {
	if name := s.String(nameKey); name != "" {
		return name
	}
	p := s.String(pathKey)
	if p == "" {
		return ""
	}
	return path.Base(p)
}
