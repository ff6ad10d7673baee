package mlog

// nopLogger discards everything. Used as the default when a subsystem is
// constructed without an explicit Logger, and in tests that don't care
// about log output.
type nopLogger struct{}

// Nop returns a Logger that discards all output.
//
//nolint:ireturn
func Nop() Logger { return nopLogger{} }

func (nopLogger) Info(args ...any)                  {}
func (nopLogger) Infof(format string, args ...any)  {}
func (nopLogger) Infoln(args ...any)                {}
func (nopLogger) Warn(args ...any)                  {}
func (nopLogger) Warnf(format string, args ...any)  {}
func (nopLogger) Warnln(args ...any)                {}
func (nopLogger) Error(args ...any)                 {}
func (nopLogger) Errorf(format string, args ...any) {}
func (nopLogger) Errorln(args ...any)               {}
func (nopLogger) Debug(args ...any)                 {}
func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Debugln(args ...any)               {}
func (nopLogger) Fatal(args ...any)                 {}
func (nopLogger) Fatalf(format string, args ...any) {}
func (nopLogger) Fatalln(args ...any)               {}

//nolint:ireturn
func (n nopLogger) WithFields(fields ...any) Logger { return n }

func (nopLogger) Sync() error { return nil }
