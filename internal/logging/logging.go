package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/desertwitch/execwalk/internal/flags"
	"github.com/lmittmann/tint"
)

type Options struct {
	LogLevel flags.LogLevel

	Logout io.Writer
	Stdout io.Writer
	Stderr io.Writer

	WantJSON bool
	NoColor  bool
}

type Logger struct {
	*slog.Logger

	Options Options
}

func NewLogger(opts Options) *Logger {
	var logger *slog.Logger

	if opts.Logout == nil {
		opts.Logout = io.Discard
	}

	if opts.WantJSON {
		logger = slog.New(slog.NewJSONHandler(opts.Logout, &slog.HandlerOptions{
			Level: opts.LogLevel.Value,
		}))
	} else {
		logger = slog.New(tint.NewHandler(opts.Logout,
			&tint.Options{
				Level:      opts.LogLevel.Value,
				TimeFormat: time.TimeOnly,
				NoColor:    opts.NoColor,
			}))
	}

	return &Logger{
		Logger:  logger,
		Options: opts,
	}
}

// Discard returns a logger that drops every record, for library callers
// that did not configure logging.
func Discard() *Logger {
	return NewLogger(Options{
		Logout: io.Discard,
		Stdout: io.Discard,
		Stderr: io.Discard,
	})
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:  l.Logger.With(args...),
		Options: l.Options,
	}
}
