// Package logging builds the zap logger shared by mcpchat components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level and destination of a logger
type Options struct {
	// Level is a zap level name: debug, info, warn or error
	Level string
	// Verbose forces debug level
	Verbose bool
	// File, when set, receives the log instead of Writer. The file is
	// appended to and created with 0o600.
	File string
	// Writer defaults to os.Stderr
	Writer io.Writer
}

// ParseLevel converts a level name, defaulting to info for ""
func ParseLevel(name string) (zapcore.Level, error) {
	if strings.TrimSpace(name) == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return lvl, nil
}

// New builds a console logger with ISO8601 timestamps. The returned
// function flushes the logger and closes any file it opened.
func New(opts Options) (*zap.Logger, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	var (
		out     zapcore.WriteSyncer
		closeFn = func() {}
	)
	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = zapcore.AddSync(f)
		closeFn = func() { _ = f.Close() }
	case opts.Writer != nil:
		out = zapcore.AddSync(opts.Writer)
	default:
		out = zapcore.Lock(os.Stderr)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), out, zap.NewAtomicLevelAt(level))
	logger := zap.New(core).Named("mcpchat")

	return logger, func() {
		_ = logger.Sync()
		closeFn()
	}, nil
}
