package diff

import (
	"encoding/json"
	"time"
)

const (
	// 値なしの表示
	EmptyDisplay = "-"
	// 日付・ステータス未定の表示
	PendingDisplay = "待確認"
	// 再注文制限 0 の表示
	UnlimitedDisplay = "unlimited"
	// パスワードは常にこの値で表示
	MaskedDisplay = "********"

	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"
)

// 1項目の変更前後。全エンティティ共通の形。
type Change struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

func (c Change) MarshalJSON() ([]byte, error) {
	type pair struct {
		Before any `json:"before"`
		After  any `json:"after"`
	}
	return json.Marshal(pair{Before: renderTime(c.Before), After: renderTime(c.After)})
}

// 項目名 -> 変更
type Changes map[string]Change

func (c Changes) Empty() bool { return len(c) == 0 }

// 後の変更で上書きする。before は最初の値を残す。
// 元の値に戻った項目は消す。
func (c Changes) Merge(next Changes) Changes {
	out := make(Changes, len(c)+len(next))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range next {
		prev, ok := out[k]
		if !ok {
			out[k] = v
			continue
		}
		merged := Change{Before: prev.Before, After: v.After}
		if sameDisplay(merged.Before, merged.After) {
			delete(out, k)
			continue
		}
		out[k] = merged
	}
	return out
}

func renderTime(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(DateTimeLayout)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.Format(DateTimeLayout)
	}
	return v
}

func sameDisplay(a, b any) bool {
	ab, errA := json.Marshal(renderTime(a))
	bb, errB := json.Marshal(renderTime(b))
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}
