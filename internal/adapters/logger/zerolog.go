package logger

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// ZeroLogger implements ports.Logger on top of zerolog. It backs the "json"
// and "console" formats.
type ZeroLogger struct {
	logger zerolog.Logger
}

// NewZeroLogger creates a zerolog backed logger writing to w.
func NewZeroLogger(w io.Writer, level LogLevel) *ZeroLogger {
	return &ZeroLogger{
		logger: zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger(),
	}
}

func zerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *ZeroLogger) write(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	if e == nil {
		return
	}
	for _, f := range fields {
		if len(f) > 0 {
			e = e.Fields(f)
		}
	}
	e.Msg(msg)
}

// Debug logs a message at Debug level.
func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(l.logger.Debug(), msg, fields)
}

// Info logs a message at Info level.
func (l *ZeroLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(l.logger.Info(), msg, fields)
}

// Warn logs a message at Warning level.
func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(l.logger.Warn(), msg, fields)
}

// Error logs an error message at Error level.
func (l *ZeroLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.write(l.logger.Error().Err(err), msg, fields)
}
