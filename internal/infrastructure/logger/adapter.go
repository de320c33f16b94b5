package logger

import (
	"fmt"

	"behat-locator/internal/application/port/output"

	"go.uber.org/zap"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

type LoggerAdapter struct {
	sugar *zap.SugaredLogger
	sync  bool
}

// NewLoggerAdapter writes JSON lines to log/<timestamp>_<task>.log.
func NewLoggerAdapter(taskName, level string) (*LoggerAdapter, error) {
	path, err := logFilePath(taskName)
	if err != nil {
		return nil, err
	}
	return build(level, true, path)
}

// NewConsoleLogger writes JSON lines to stderr.
func NewConsoleLogger(level string) (*LoggerAdapter, error) {
	return build(level, false, "stderr")
}

// FromZap wraps an existing zap logger.
func FromZap(l *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{sugar: l.Sugar()}
}

func NewNop() *LoggerAdapter {
	return &LoggerAdapter{sugar: zap.NewNop().Sugar()}
}

func build(level string, syncOnClose bool, outputs ...string) (*LoggerAdapter, error) {
	cfg, err := newConfig(level, outputs...)
	if err != nil {
		return nil, err
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &LoggerAdapter{sugar: l.Sugar(), sync: syncOnClose}, nil
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{sugar: l.sugar.With(key, value), sync: l.sync}
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &LoggerAdapter{sugar: l.sugar.With(args...), sync: l.sync}
}

func (l *LoggerAdapter) Named(name string) output.LoggerPort {
	return &LoggerAdapter{sugar: l.sugar.Named(name), sync: l.sync}
}

// Close flushes buffered entries. Syncing stderr fails on some platforms,
// so console loggers skip it.
func (l *LoggerAdapter) Close() error {
	if !l.sync {
		return nil
	}
	return l.sugar.Sync()
}
