package diff

import (
	"strconv"
	"strings"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindInt
	kindBool
	kindDate
	kindSet
	kindFile
	kindStatus
)

// 比較対象の項目定義。key が空なら name をそのまま使う。
type field struct {
	name string
	key  string
	kind fieldKind

	// 表示用の別キー（permission_level_id -> permission_level_name など）
	label string
	// kindFile のときの保存パスのキー
	pathKey string
	// kindInt で 0 のときの表示
	zeroDisplay string
}

func (f field) sourceKey() string {
	if f.key != "" {
		return f.key
	}
	return f.name
}

func (f field) present(s Snapshot) bool {
	if s.Has(f.sourceKey()) {
		return true
	}
	return (f.label != "" && s.Has(f.label)) || (f.pathKey != "" && s.Has(f.pathKey))
}

// 比較用の正規化値。型の違い（"3" と 3）は同じ値になる。
func (f field) normalize(s Snapshot) string {
	v := s.Value(f.sourceKey())
	switch f.kind {
	case kindInt:
		if i, ok := toInt(v); ok {
			return strconv.FormatInt(i, 10)
		}
		return toString(v)
	case kindBool:
		return strconv.FormatBool(toBool(v))
	case kindDate:
		return toDate(v)
	case kindSet:
		return strings.Join(toStringSet(v), "\x00")
	case kindFile:
		return fileName(s, f.sourceKey(), f.pathKey)
	case kindStatus:
		return strings.ToLower(toString(v))
	}
	return toString(v)
}

// before/after に載せる表示値
func (f field) display(s Snapshot) any {
	if f.label != "" {
		if l := s.String(f.label); l != "" {
			return l
		}
	}
	v := s.Value(f.sourceKey())
	switch f.kind {
	case kindInt:
		i, ok := toInt(v)
		if !ok {
			return orEmpty(toString(v))
		}
		if i == 0 && f.zeroDisplay != "" {
			return f.zeroDisplay
		}
		return i
	case kindBool:
		return toBool(v)
	case kindDate:
		if d := toDate(v); d != "" {
			return d
		}
		return PendingDisplay
	case kindSet:
		set := toStringSet(v)
		if len(set) == 0 {
			return EmptyDisplay
		}
		return set
	case kindFile:
		return orEmpty(fileName(s, f.sourceKey(), f.pathKey))
	case kindStatus:
		return StatusLabel(toString(v))
	}
	return orEmpty(toString(v))
}

func orEmpty(s string) string {
	if s == "" {
		return EmptyDisplay
	}
	return s
}

// 項目ごとに比較して変わったものだけ返す
func compareFields(fields []field, before, after Snapshot) Changes {
	changes := Changes{}
	for _, f := range fields {
		if f.normalize(before) == f.normalize(after) {
			continue
		}
		changes[f.name] = Change{Before: f.display(before), After: f.display(after)}
	}
	return changes
}

// 作成時: after だけ、削除時: before だけ
func describeFields(fields []field, s Snapshot, created bool) Changes {
	changes := Changes{}
	for _, f := range fields {
		if !f.present(s) {
			continue
		}
		if created {
			changes[f.name] = Change{Before: EmptyDisplay, After: f.display(s)}
		} else {
			changes[f.name] = Change{Before: f.display(s), After: EmptyDisplay}
		}
	}
	return changes
}

var statusLabels = map[string]string{
	"pending":   PendingDisplay,
	"confirmed": "已確認",
	"rejected":  "已退回",
	"shipped":   "已出貨",
	"completed": "已完成",
	"canceled":  "已取消",
	"cancelled": "已取消",
	"active":    "上架",
	"inactive":  "下架",
}

// 注文・明細・商品のステータス表示。未知の値はそのまま返す。
func StatusLabel(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return PendingDisplay
	}
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return strings.TrimSpace(status)
}
