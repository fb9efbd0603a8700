package logging

import "github.com/arloliu/keysub/types"

// NopLogger is a no-op logger that discards all log messages.
//
// It is the default logger of every keysub component that accepts one.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger that discards all messages.
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (n *NopLogger) Debug(_ /* msg */ string, _ /* keysAndValues */ ...any) {}

// Info discards the message.
func (n *NopLogger) Info(_ /* msg */ string, _ /* keysAndValues */ ...any) {}

// Warn discards the message.
func (n *NopLogger) Warn(_ /* msg */ string, _ /* keysAndValues */ ...any) {}

// Error discards the message.
func (n *NopLogger) Error(_ /* msg */ string, _ /* keysAndValues */ ...any) {}

// Fatal discards the message (does NOT call os.Exit).
func (n *NopLogger) Fatal(_ /* msg */ string, _ /* keysAndValues */ ...any) {}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l types.Logger) types.Logger {
	if l == nil {
		return NewNop()
	}

	return l
}
