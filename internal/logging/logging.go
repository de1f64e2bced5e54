// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options describes where and how verbosely to log.
type Options struct {
	Filename   string
	Level      string
	Verbose    bool
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// ParseLevel converts a level name or a numeric slog level.
// Unrecognized values fall back to defaultLevel.
func ParseLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels, e.g. -4 for debug.
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// Writer returns the rotating log file writer for opts.
func Writer(opts Options) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   opts.Filename,
		MaxSize:    opts.MaxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   opts.Compress,
	}
}

// New builds a text logger writing to w.
// Verbose forces debug level.
func New(w io.Writer, opts Options) *slog.Logger {
	level := ParseLevel(opts.Level, slog.LevelInfo)
	if opts.Verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
}

// Configure installs a logger writing to the rotating file as the slog
// default and returns it with the file so the caller can close it.
func Configure(opts Options) (*slog.Logger, io.Closer) {
	w := Writer(opts)
	logger := New(w, opts)
	slog.SetDefault(logger)
	return logger, w
}
