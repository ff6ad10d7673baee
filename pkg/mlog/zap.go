package mlog

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is the production Logger backend. It wraps a *zap.SugaredLogger
// and, when telemetry is enabled, forwards records through the OTel log
// bridge so a log line written during a traced request carries that
// request's trace id.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// Config controls how NewZapLogger builds its underlying zap core.
type Config struct {
	Level        string // "debug", "info", "warn", "error"
	Development  bool
	ServiceName  string
	EnableBridge bool // forward records to the OTel logs pipeline
}

// NewZapLogger builds a ZapLogger from Config. On parse failure the level
// defaults to info rather than failing startup, since logging
// misconfiguration should never be a fatal error.
func NewZapLogger(cfg Config) (*ZapLogger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			level = zapcore.InfoLevel
		}
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)

	cores := []zapcore.Core{}

	base, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("mlog: build zap logger: %w", err)
	}

	cores = append(cores, base.Core())

	if cfg.EnableBridge {
		bridgeCore := otelzap.NewCore(cfg.ServiceName)
		cores = append(cores, bridgeCore)
	}

	combined := zap.New(zapcore.NewTee(cores...))

	return &ZapLogger{sugar: combined.Sugar()}, nil
}

func (l *ZapLogger) Info(args ...any)                  { l.sugar.Info(args...) }
func (l *ZapLogger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *ZapLogger) Infoln(args ...any)                { l.sugar.Infoln(args...) }
func (l *ZapLogger) Warn(args ...any)                  { l.sugar.Warn(args...) }
func (l *ZapLogger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *ZapLogger) Warnln(args ...any)                { l.sugar.Warnln(args...) }
func (l *ZapLogger) Error(args ...any)                 { l.sugar.Error(args...) }
func (l *ZapLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }
func (l *ZapLogger) Errorln(args ...any)               { l.sugar.Errorln(args...) }
func (l *ZapLogger) Debug(args ...any)                 { l.sugar.Debug(args...) }
func (l *ZapLogger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *ZapLogger) Debugln(args ...any)               { l.sugar.Debugln(args...) }
func (l *ZapLogger) Fatal(args ...any)                 { l.sugar.Fatal(args...) }
func (l *ZapLogger) Fatalf(format string, args ...any) { l.sugar.Fatalf(format, args...) }
func (l *ZapLogger) Fatalln(args ...any)               { l.sugar.Fatalln(args...) }

//nolint:ireturn
func (l *ZapLogger) WithFields(fields ...any) Logger {
	return &ZapLogger{sugar: l.sugar.With(fields...)}
}

func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

type loggerKey struct{}

// IntoContext attaches a Logger to ctx so downstream code can recover the
// request-scoped logger without threading it through every call.
func IntoContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the Logger attached by IntoContext, or a no-op
// logger if none was attached.
//
//nolint:ireturn
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}

	return Nop()
}
