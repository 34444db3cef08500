package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/common"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/infrastructure/config"
)

// Logger implements common.Logger on top of zerolog
type Logger struct {
	zl     zerolog.Logger
	closer io.Closer
}

var _ common.Logger = (*Logger)(nil)

// New builds a Logger from the logging section of the config
func New(cfg config.LoggingConfig) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var out io.Writer
	var closer io.Closer
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	default:
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	if cfg.Format == "text" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: cfg.Output == "file"}
	}

	l := NewWithWriter(out, level, cfg.IncludeCaller)
	l.closer = closer
	return l, nil
}

// NewWithWriter logs JSON lines to w at or above level
func NewWithWriter(w io.Writer, level zerolog.Level, includeCaller bool) *Logger {
	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if includeCaller {
		// Skip Log and the zerolog event helpers
		ctx = ctx.CallerWithSkipFrameCount(3)
	}
	return &Logger{zl: ctx.Logger()}
}

// ParseLevel maps config level names onto zerolog levels
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
}

// Log writes one entry. Metadata keys are emitted in sorted order.
func (l *Logger) Log(level, message string, metadata map[string]interface{}) {
	var event *zerolog.Event
	switch strings.ToUpper(level) {
	case common.LevelDebug:
		event = l.zl.Debug()
	case "WARN", common.LevelWarn:
		event = l.zl.Warn()
	case common.LevelError:
		event = l.zl.Error()
	default:
		event = l.zl.Info()
	}
	if event == nil {
		return
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := metadata[k].(type) {
		case error:
			event = event.AnErr(k, v)
		case fmt.Stringer:
			event = event.Stringer(k, v)
		default:
			event = event.Interface(k, v)
		}
	}
	event.Msg(message)
}

// Level returns the minimum level that is written
func (l *Logger) Level() zerolog.Level {
	return l.zl.GetLevel()
}

// WithLevel returns a copy writing at or above level
func (l *Logger) WithLevel(level zerolog.Level) *Logger {
	return &Logger{zl: l.zl.Level(level), closer: l.closer}
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
