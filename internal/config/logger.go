package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

func NewLogger(env string) *slog.Logger {
	return NewLoggerWithWriter(env, os.Stdout)
}

// NewLoggerWithWriter builds the environment's handler on top of w.
func NewLoggerWithWriter(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		AddSource: env == "development",
	}

	if env == "production" {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(w, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// OpenLogFile returns a daily rotating file at path.<date>, with path itself
// kept as a symlink to the current file. Files older than maxAge are removed.
func OpenLogFile(path string, maxAge time.Duration) (*rotatelogs.RotateLogs, error) {
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	rl, err := rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return rl, nil
}

// SetupLogger wires stdout and, when LOG_FILE is set, the rotating file.
// The returned closer is nil when no file is in use.
func SetupLogger(cfg *Config) (*slog.Logger, io.Closer, error) {
	if cfg.LogFile == "" {
		return NewLogger(cfg.Environment), nil, nil
	}

	rl, err := OpenLogFile(cfg.LogFile, cfg.LogMaxAge)
	if err != nil {
		return nil, nil, err
	}
	return NewLoggerWithWriter(cfg.Environment, io.MultiWriter(os.Stdout, rl)), rl, nil
}
