package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger. The first call decides level and format;
// later calls return the same instance.
func Get(level, format string) *Logger {
	once.Do(func() {
		globalLogger = New(level, format)
	})
	return globalLogger
}

// New builds an independent logger, mainly for tests and tools.
func New(level, format string) *Logger {
	return newZapLogger(level, format)
}

// FormatFor picks JSON output for production deployments.
func FormatFor(production bool) string {
	if production {
		return FormatJSON
	}
	return FormatConsole
}
