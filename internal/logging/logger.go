package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rgehrsitz/paytax/internal/calculation"
)

// Format selects the log line encoding
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Field is a structured key/value attached to a log line
type Field struct {
	Key   string
	Value any
}

// String creates a string field
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an int field
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// ZerologAdapter implements calculation.Logger on top of zerolog
type ZerologAdapter struct {
	logger zerolog.Logger
}

var _ calculation.Logger = (*ZerologAdapter)(nil)

// NewZerologAdapter wraps an existing zerolog logger
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// New builds a logger tagged with component, writing in the given format.
// debug lowers the level from info to debug.
func New(w io.Writer, component string, format Format, debug bool) *ZerologAdapter {
	if w == nil {
		w = os.Stderr
	}
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Str("component", component).Logger()
	return NewZerologAdapter(zl)
}

// ParseFormat maps a flag value to a Format
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatConsole:
		return FormatConsole, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown log format %q (expected console or json)", s)
	}
}

// With returns a child logger carrying the given fields
func (a *ZerologAdapter) With(fields ...Field) *ZerologAdapter {
	ctx := a.logger.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologAdapter{logger: ctx.Logger()}
}

func (a *ZerologAdapter) Debugf(format string, args ...any) { a.logger.Debug().Msgf(format, args...) }
func (a *ZerologAdapter) Infof(format string, args ...any)  { a.logger.Info().Msgf(format, args...) }
func (a *ZerologAdapter) Warnf(format string, args ...any)  { a.logger.Warn().Msgf(format, args...) }
func (a *ZerologAdapter) Errorf(format string, args ...any) { a.logger.Error().Msgf(format, args...) }

// Info logs msg with structured fields
func (a *ZerologAdapter) Info(msg string, fields ...Field) {
	withFields(a.logger.Info(), fields).Msg(msg)
}

// Error logs msg and err with structured fields
func (a *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	withFields(a.logger.Error().Err(err), fields).Msg(msg)
}

func withFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			e = e.Str(f.Key, v)
		case int:
			e = e.Int(f.Key, v)
		case error:
			e = e.AnErr(f.Key, v)
		default:
			e = e.Interface(f.Key, v)
		}
	}
	return e
}
