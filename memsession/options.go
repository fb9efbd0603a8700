package memsession

import "github.com/arloliu/keysub/types"

// DefaultPullBufferSize bounds the samples buffered per pull-mode subscriber.
const DefaultPullBufferSize = 1024

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	logger         types.Logger
	pullBufferSize int
	id             string
}

// WithLogger sets the session logger.
func WithLogger(logger types.Logger) Option {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

// WithPullBufferSize sets how many samples a pull-mode subscriber buffers before the
// oldest is discarded. Values <= 0 use DefaultPullBufferSize.
func WithPullBufferSize(n int) Option {
	return func(o *sessionOptions) {
		o.pullBufferSize = n
	}
}

// WithID sets the session identifier stamped on published samples. A random UUID is
// used when unset.
func WithID(id string) Option {
	return func(o *sessionOptions) {
		o.id = id
	}
}
