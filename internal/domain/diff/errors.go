package diff

import "errors"

var (
	// スナップショットの形が想定外
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	// テーブルに対応しない操作
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// 計算機が登録されていない
	ErrUnknownTable = errors.New("no calculator for table")
)
