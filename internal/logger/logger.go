package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const loggerKey contextKey = "logger"

var log = zap.NewNop()

// Init builds the process logger. Production uses JSON output, everything
// else gets the colored development encoder.
func Init(env, level string) (*zap.Logger, error) {
	lvl := parseLevel(level)

	var (
		l   *zap.Logger
		err error
	)
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err = cfg.Build(zap.Fields(
			zap.String("service", "barber-booking"),
			zap.String("environment", env),
		))
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err = cfg.Build(zap.Fields(
			zap.String("service", "barber-booking"),
			zap.String("environment", env),
		))
	}
	if err != nil {
		return nil, err
	}

	log = l
	zap.ReplaceGlobals(l)
	return l, nil
}

func L() *zap.Logger {
	return log
}

func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return log
	}
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return log
}

func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
