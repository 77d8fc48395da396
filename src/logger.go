package src

import "go.uber.org/zap"

// Logger is the logging surface libraries in this repo depend on. Binaries
// construct a concrete zap logger and pass its sugared form down.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)

	Sync() error
}

var _ Logger = (*zap.SugaredLogger)(nil)
