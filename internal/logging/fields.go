package logging

import "github.com/arloliu/keysub/types"

// fieldsLogger prepends a fixed set of key-value pairs to every call.
type fieldsLogger struct {
	next   types.Logger
	fields []any
}

// With returns a logger that adds keysAndValues to every message logged through it.
//
// Parameters:
//   - l: Logger to wrap (nil yields a NopLogger)
//   - keysAndValues: Fields to prepend
//
// Returns:
//   - types.Logger: The scoped logger
//
// Example:
//
//	subLog := logging.With(logger, "subscriber_id", 7, "key_expr", "sensor/temp")
//	subLog.Debug("pull forwarded")
func With(l types.Logger, keysAndValues ...any) types.Logger {
	if l == nil {
		return NewNop()
	}
	if _, ok := l.(*NopLogger); ok || len(keysAndValues) == 0 {
		return l
	}
	if sl, ok := l.(*SlogLogger); ok {
		return sl.With(keysAndValues...)
	}
	if fl, ok := l.(*fieldsLogger); ok {
		merged := make([]any, 0, len(fl.fields)+len(keysAndValues))
		merged = append(merged, fl.fields...)
		merged = append(merged, keysAndValues...)

		return &fieldsLogger{next: fl.next, fields: merged}
	}

	return &fieldsLogger{next: l, fields: append([]any(nil), keysAndValues...)}
}

func (f *fieldsLogger) merge(keysAndValues []any) []any {
	out := make([]any, 0, len(f.fields)+len(keysAndValues))
	out = append(out, f.fields...)

	return append(out, keysAndValues...)
}

func (f *fieldsLogger) Debug(msg string, keysAndValues ...any) {
	f.next.Debug(msg, f.merge(keysAndValues)...)
}

func (f *fieldsLogger) Info(msg string, keysAndValues ...any) {
	f.next.Info(msg, f.merge(keysAndValues)...)
}

func (f *fieldsLogger) Warn(msg string, keysAndValues ...any) {
	f.next.Warn(msg, f.merge(keysAndValues)...)
}

func (f *fieldsLogger) Error(msg string, keysAndValues ...any) {
	f.next.Error(msg, f.merge(keysAndValues)...)
}

func (f *fieldsLogger) Fatal(msg string, keysAndValues ...any) {
	f.next.Fatal(msg, f.merge(keysAndValues)...)
}
