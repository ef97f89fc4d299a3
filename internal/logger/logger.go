package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

const requestIDField = "request_id"

var (
	mu      sync.RWMutex
	logFile *os.File
	base    = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
)

// InitLogging sets up the global logger. Entries go to stderr and, when
// logFilePath is set, are also appended to that file as JSON.
func InitLogging(logFilePath string) error {
	var writers []io.Writer
	writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var f *os.File
	if logFilePath != "" {
		var err error
		f, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	base = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	return nil
}

// SetOutput replaces the log destination. Used by tests to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel sets the global minimum level: debug, info, warn, error.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// WithRequestID stores the request id in ctx so every entry logged with it
// carries the id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// FromContext returns the global logger enriched with request context.
func FromContext(ctx context.Context) *zerolog.Logger {
	mu.RLock()
	l := base
	mu.RUnlock()

	if id := RequestID(ctx); id != "" {
		l = l.With().Str(requestIDField, id).Logger()
	}
	return &l
}

func InfoLog(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Info().Msgf(format, args...)
}

func WarnLog(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Warn().Msgf(format, args...)
}

func ErrorLog(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Error().Msgf(format, args...)
}

func DebugLog(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Debug().Msgf(format, args...)
}
