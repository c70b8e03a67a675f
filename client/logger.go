package client

// Logger is an optional package logger for progress and non-fatal warnings.
type Logger interface {
	// Debugf logs low-level detail such as key cache refreshes.
	Debugf(format string, args ...any)
	// Infof logs progress such as endpoint fallbacks.
	Infof(format string, args ...any)
	// Warnf logs a formatted warning message.
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
