// Package telemetry is the structured-logging ambient concern, adapted
// from the shape of advanced/logging.LoggingConfig (level, format,
// output knobs) but backed by go.uber.org/zap rather than a hand-rolled
// writer, since advanced/logging carries no third-party dependency of
// its own to adopt in its place.
package telemetry

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the subset of LoggingConfig this library
// actually needs: a level and an output format. Rotation/retention are
// dropped, they belong to a deployment's log shipper, not the library.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig matches advanced/logging.DefaultConfig's level/format.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json"}
}

// Logger is a thin facade over *zap.SugaredLogger, narrowed to the
// leveled calls the rest of this module uses.
type Logger struct {
	z *zap.SugaredLogger
}

// New builds a Logger from cfg. An unrecognized level falls back to
// info; an unrecognized format falls back to json.
func New(cfg Config) (*Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}

	var lvl zapcore.Level
	if err := lvl.Set(cfg.Level); err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	base, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("telemetry: build logger: %w", err)
	}
	return &Logger{z: base.Sugar()}, nil
}

// Noop returns a Logger that discards everything, for tests and for
// callers that open a Database without supplying one.
func Noop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

func (l *Logger) Debugw(msg string, kv ...interface{}) { l.z.Debugw(msg, kv...) }
func (l *Logger) Infow(msg string, kv ...interface{})  { l.z.Infow(msg, kv...) }
func (l *Logger) Warnw(msg string, kv ...interface{})  { l.z.Warnw(msg, kv...) }
func (l *Logger) Errorw(msg string, kv ...interface{}) { l.z.Errorw(msg, kv...) }

// Sync flushes any buffered log entries, to be called before process
// exit.
func (l *Logger) Sync() error { return l.z.Sync() }

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{z: l.z.With(kv...)}
}
