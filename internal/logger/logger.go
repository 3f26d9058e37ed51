// Package logger builds the zap logger used across edulearn.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config options used in creating the logger.
type Config struct {
	Level string // debug, info, warn or error
	Env   string // development or production
	File  string // log file path; empty writes to Fallback
	// Fallback receives output when File is empty. A nil Fallback
	// discards logs, which keeps the TUI's alternate screen clean.
	Fallback zapcore.WriteSyncer
}

// New returns a zap logger for cfg. The returned cleanup flushes the
// logger and closes the log file.
func New(cfg Config) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("unknown logging level %q: %w", cfg.Level, err)
	}

	out, closeOut, err := output(cfg)
	if err != nil {
		return nil, nil, err
	}

	var encoder zapcore.Encoder
	switch cfg.Env {
	case "development":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(ec)
	case "production", "":
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z"))
		}
		ec.TimeKey = "@timestamp"
		ec.MessageKey = "message"
		encoder = zapcore.NewJSONEncoder(ec)
	default:
		closeOut()
		return nil, nil, fmt.Errorf("unknown logging env %q", cfg.Env)
	}

	core := zapcore.NewCore(encoder, out, level)
	log := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	cleanup := func() {
		_ = log.Sync()
		closeOut()
	}
	return log, cleanup, nil
}

func output(cfg Config) (zapcore.WriteSyncer, func(), error) {
	if cfg.File == "" {
		if cfg.Fallback == nil {
			return zapcore.AddSync(discard{}), func() {}, nil
		}
		return cfg.Fallback, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fd, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return fd, func() { fd.Close() }, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
