package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"smcSignalBot/internal/ports"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatText    = "text"
)

// Config selects the logger implementation and its destination.
type Config struct {
	Level  LogLevel
	Format string
	// Output is "stdout", "stderr" or a file path. Files rotate through
	// lumberjack when MaxAgeDays is positive.
	Output     string
	MaxAgeDays int
	MaxSizeMB  int
}

// New builds a ports.Logger for cfg. The returned closer releases the log file
// and is a no-op for the standard streams.
func New(cfg Config) (ports.Logger, io.Closer, error) {
	w, closer, err := openOutput(cfg)
	if err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(cfg.Format) {
	case FormatJSON, "":
		return NewZeroLogger(w, cfg.Level), closer, nil
	case FormatConsole:
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		return NewZeroLogger(cw, cfg.Level), closer, nil
	case FormatText:
		return NewStdLoggerTo(w, cfg.Level), closer, nil
	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("%w: invalid log format '%s'", ports.ErrConfigurationError, cfg.Format)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openOutput(cfg Config) (io.Writer, io.Closer, error) {
	switch cfg.Output {
	case "stdout":
		return os.Stdout, nopCloser{}, nil
	case "stderr", "":
		return os.Stderr, nopCloser{}, nil
	}

	if cfg.MaxAgeDays > 0 {
		size := cfg.MaxSizeMB
		if size <= 0 {
			size = 100
		}
		lj := &lumberjack.Logger{
			Filename: cfg.Output,
			MaxAge:   cfg.MaxAgeDays,
			MaxSize:  size,
			Compress: true,
		}
		return lj, lj, nil
	}

	file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open log file '%s': %w", ports.ErrConfigurationError, cfg.Output, err)
	}
	return file, file, nil
}
