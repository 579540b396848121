package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a JSON logger in production and a console logger
// everywhere else.
func NewLogger(env string, opts ...zap.Option) (*zap.Logger, error) {
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build(opts...)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build(opts...)
}

// LevelOption raises the minimum level to the named one. Unknown names leave
// the logger unchanged.
func LevelOption(level string) zap.Option {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zap.IncreaseLevel(zapcore.DebugLevel)
	}
	return zap.IncreaseLevel(lvl)
}
