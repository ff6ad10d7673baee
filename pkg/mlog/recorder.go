package mlog

import (
	"fmt"
	"sync"
)

// Recorder is a Logger used in tests to assert on what was logged without
// depending on zap's output format.
type Recorder struct {
	mu     sync.Mutex
	fields map[string]any
	lines  []string
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{fields: map[string]any{}}
}

func (r *Recorder) record(level string, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = append(r.lines, level+": "+msg)
}

// Lines returns every recorded line in call order.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.lines))
	copy(out, r.lines)

	return out
}

// Field returns a value attached via WithFields, if any.
func (r *Recorder) Field(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.fields[key]

	return v, ok
}

func (r *Recorder) Info(args ...any)                  { r.record("info", fmt.Sprint(args...)) }
func (r *Recorder) Infof(format string, args ...any)  { r.record("info", fmt.Sprintf(format, args...)) }
func (r *Recorder) Infoln(args ...any)                { r.record("info", fmt.Sprintln(args...)) }
func (r *Recorder) Warn(args ...any)                  { r.record("warn", fmt.Sprint(args...)) }
func (r *Recorder) Warnf(format string, args ...any)  { r.record("warn", fmt.Sprintf(format, args...)) }
func (r *Recorder) Warnln(args ...any)                { r.record("warn", fmt.Sprintln(args...)) }
func (r *Recorder) Error(args ...any)                 { r.record("error", fmt.Sprint(args...)) }
func (r *Recorder) Errorf(format string, args ...any) { r.record("error", fmt.Sprintf(format, args...)) }
func (r *Recorder) Errorln(args ...any)               { r.record("error", fmt.Sprintln(args...)) }
func (r *Recorder) Debug(args ...any)                 { r.record("debug", fmt.Sprint(args...)) }
func (r *Recorder) Debugf(format string, args ...any) { r.record("debug", fmt.Sprintf(format, args...)) }
func (r *Recorder) Debugln(args ...any)               { r.record("debug", fmt.Sprintln(args...)) }
func (r *Recorder) Fatal(args ...any)                 { r.record("fatal", fmt.Sprint(args...)) }
func (r *Recorder) Fatalf(format string, args ...any) { r.record("fatal", fmt.Sprintf(format, args...)) }
func (r *Recorder) Fatalln(args ...any)               { r.record("fatal", fmt.Sprintln(args...)) }

//nolint:ireturn
func (r *Recorder) WithFields(fields ...any) Logger {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := map[string]any{}
	for k, v := range r.fields {
		merged[k] = v
	}

	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			merged[key] = fields[i+1]
		}
	}

	return &Recorder{fields: merged}
}

func (r *Recorder) Sync() error { return nil }
