package oplog

import "errors"

// ログ処理の失敗。どれも呼び出し側へは返さず、zap に出して握りつぶす。
var (
	ErrDiffComputation = errors.New("diff computation failed")
	ErrPersistence     = errors.New("operation log write failed")
	ErrQuery           = errors.New("operation log query failed")
)
