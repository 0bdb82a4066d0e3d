// Package logging routes go-kasumi's package-level logger through zerolog.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/rs/zerolog"
)

// Setup builds a zerolog.Logger writing human-readable lines to w and installs it
// as the go-kasumi logger used across the bot.
// level is one of zerolog's level names; an empty string means "info".
func Setup(w io.Writer, level string) (zerolog.Logger, error) {
	if level == "" {
		level = zerolog.InfoLevel.String()
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	l := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	logger.SetLogger(New(l))

	return l, nil
}

// Logger adapts zerolog.Logger to go-kasumi's logger.Logger interface.
type Logger struct {
	zl zerolog.Logger
}

var _ logger.Logger = (*Logger)(nil)

// New wraps the given zerolog.Logger.
func New(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

// Debug logs args at debug level.
func (l *Logger) Debug(args ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprint(args...))
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Info logs args at info level.
func (l *Logger) Info(args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprint(args...))
}

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Warn logs args at warn level.
func (l *Logger) Warn(args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprint(args...))
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs args at error level.
func (l *Logger) Error(args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprint(args...))
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}
