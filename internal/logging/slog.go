// Package logging provides types.Logger implementations used across keysub.
package logging

import (
	"log/slog"
	"os"

	"github.com/arloliu/keysub/types"
)

// SlogLogger adapts a *slog.Logger to types.Logger.
//
// Sessions and clients scope it per component through With, which maps onto slog's
// own attribute handling instead of re-sending the fields on every call.
type SlogLogger struct {
	logger *slog.Logger
}

var _ types.Logger = (*SlogLogger)(nil)

// NewSlog wraps logger; nil falls back to slog.Default().
//
//	logger := logging.NewSlog(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
//	natsession.New(nc, natsession.Config{Logger: logger})
func NewSlog(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogLogger{logger: logger}
}

// With returns a logger carrying keysAndValues as slog attributes.
func (l *SlogLogger) With(keysAndValues ...any) types.Logger {
	return &SlogLogger{logger: l.logger.With(keysAndValues...)}
}

func (l *SlogLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *SlogLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *SlogLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}

func (l *SlogLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}

// Fatal logs at Error level, slog having no fatal level, and exits the process.
func (l *SlogLogger) Fatal(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
	os.Exit(1) //nolint:revive
}
