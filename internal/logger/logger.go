package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 本番は JSON、それ以外は開発用の読みやすい形式
func New(prod bool) *zap.Logger {
	loggerConfig := zap.NewDevelopmentConfig()
	if prod {
		loggerConfig = zap.NewProductionConfig()
	}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := loggerConfig.Build()
	if nil != err {
		panic(err)
	}

	return logger
}
