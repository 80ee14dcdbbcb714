package partner

import (
	"github.com/rs/zerolog"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ZerologLogger writes Logger calls to a zerolog.Logger.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	return NewZerologLogger(zerolog.Nop())
}

// Debug implements Logger.
func (l *ZerologLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

// Info implements Logger.
func (l *ZerologLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

// Warn implements Logger.
func (l *ZerologLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

// Error implements Logger.
func (l *ZerologLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
