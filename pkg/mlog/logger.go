// Package mlog defines the logging contract shared by every ModKit
// subsystem. Production code never imports zap directly; it takes a
// Logger so the concrete backend stays swappable and tests can inject
// a recording fake.
package mlog

// Logger is the common interface implemented by every logging backend
// used across the framework core.
type Logger interface {
	Info(args ...any)
	Infof(format string, args ...any)
	Infoln(args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)
	Warnln(args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)
	Errorln(args ...any)

	Debug(args ...any)
	Debugf(format string, args ...any)
	Debugln(args ...any)

	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Fatalln(args ...any)

	// WithFields returns a new Logger carrying the given key/value pairs,
	// leaving the receiver unchanged.
	WithFields(fields ...any) Logger

	Sync() error
}
