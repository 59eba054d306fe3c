// Package logger provides structured logging utilities.
//
// It keeps a small printf-style facade over zerolog so call sites stay
// uniform across the codebase.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// Initialize sets up the global logger. In development mode output is
// human-readable console text on stderr; otherwise JSON on stdout.
func Initialize(level string, development bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)

	if development {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Caller().Logger()
	} else {
		log = zerolog.New(os.Stdout).With().Timestamp().Str("service", "ocserv-panel").Logger()
	}

	return nil
}

// Info logs informational messages.
func Info(message string, args ...interface{}) {
	log.Info().Msgf(message, args...)
}

// Warn logs warning messages.
func Warn(message string, args ...interface{}) {
	log.Warn().Msgf(message, args...)
}

// Error logs error messages.
func Error(message string, args ...interface{}) {
	log.Error().Msgf(message, args...)
}

// Debug logs debug messages.
func Debug(message string, args ...interface{}) {
	log.Debug().Msgf(message, args...)
}

// Fatal logs fatal messages and terminates the program.
func Fatal(message string, args ...interface{}) {
	log.Fatal().Msgf(message, args...)
}

// Sync flushes any buffered log entries (no-op for zerolog).
func Sync() {}
