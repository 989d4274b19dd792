package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// OpLogger returns a child logger with lifecycle-operation context fields.
func OpLogger(base *zap.Logger, action, workspace, uid string) *zap.Logger {
	return base.With(
		zap.String("action", action),
		zap.String("workspace", workspace),
		zap.String("uid", uid),
	)
}
