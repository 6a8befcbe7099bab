/*
Package logx provides a structured logging wrapper based on zerolog.

It initializes the process-wide logger, selecting the output format and level
from the running environment (human-readable console output in development,
JSON at Info level otherwise), and exposes small helpers for the common
logging levels.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger configures the global zerolog instance.
// Development mode logs at Debug level through a ConsoleWriter; otherwise
// logs are emitted as JSON at Info level. Caller information and a Unix
// timestamp are attached to every entry.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if isDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger returns the global zerolog.Logger. Components derive child loggers
// from it with their own context fields.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// evenFields drops the fields list when it does not form key-value pairs,
// which would otherwise make zerolog panic.
func evenFields(fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Msg("Log call received an odd number of fields. Fields ignored.")
		return nil
	}
	return fields
}

// Info records a message at the Info level with optional key-value fields.
func Info(msg string, fields ...any) {
	Logger().Info().Fields(evenFields(fields)).CallerSkipFrame(1).Msg(msg)
}

// Warn records a message at the Warn level with optional key-value fields.
func Warn(msg string, fields ...any) {
	Logger().Warn().Fields(evenFields(fields)).CallerSkipFrame(1).Msg(msg)
}

// Error records an error and a message at the Error level.
func Error(err error, msg string, fields ...any) {
	Logger().Error().Err(err).Fields(evenFields(fields)).CallerSkipFrame(1).Msg(msg)
}

// Fatal records an error at the Fatal level and terminates the process.
func Fatal(err error, msg string, fields ...any) {
	Logger().Fatal().Err(err).Fields(evenFields(fields)).CallerSkipFrame(1).Msg(msg)
}
