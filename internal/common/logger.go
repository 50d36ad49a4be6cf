package common

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// Fields are extra attributes attached by LogError.
type Fields map[string]any

// redacted lists attribute keys whose values never reach the log.
var redacted = []string{"token", "access_token", "password", "authorization", "secret"}

// ParseLevel maps a configured level name onto a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalidConfig, level)
	}
	return l, nil
}

// SetupLogger installs the default slog logger. Format is "console" (text)
// or "json"; w defaults to stderr.
func SetupLogger(w io.Writer, level slog.Level, format string) error {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redact}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "console", "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if slices.Contains(redacted, strings.ToLower(a.Key)) {
		return slog.String(a.Key, "[redacted]")
	}
	return a
}

// LogError logs err at error level. Fields are emitted in key order so log
// lines are stable across runs.
func LogError(err error, msg string, fields Fields) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := make([]slog.Attr, 0, len(fields)+1)
	attrs = append(attrs, slog.String("error", err.Error()))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}

	slog.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}
