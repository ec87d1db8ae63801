package log

import (
	"sync"
)

var (
	defaultLogger *Logger
	loggerMu      sync.RWMutex
)

// SetDefaultLogger replaces the process-wide logger. The CLI calls this once
// after config and flags are resolved; everything constructed afterwards
// picks it up through DefaultLogger.
func SetDefaultLogger(logger *Logger) {
	loggerMu.Lock()
	defaultLogger = logger
	loggerMu.Unlock()
}

// DefaultLogger returns the process-wide logger, lazily installing the
// built-in defaults when nothing was configured (library use, tests).
func DefaultLogger() *Logger {
	loggerMu.RLock()
	logger := defaultLogger
	loggerMu.RUnlock()

	if logger == nil {
		logger = Default()
		SetDefaultLogger(logger)
	}
	return logger
}
