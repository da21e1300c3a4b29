package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Debug bool
}

func NewLogger(cfg *LoggerConfig) (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	if cfg.Debug {
		c.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return c.Build()
}

// NewNoopLogger is used in tests that do not assert on log output.
func NewNoopLogger() *zap.Logger {
	return zap.NewNop()
}
