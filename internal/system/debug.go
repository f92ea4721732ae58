package system

import "sync/atomic"

// debugLoggingEnabled gates per-agent debug logging, which is too chatty
// to guard by log level alone on a per-tick hot path.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging toggles verbose AI logging. Call during startup after
// parsing config.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether verbose AI logging is on. Use it to guard
// expensive slog.Debug calls in tick paths.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
