package natsession

import (
	"time"

	"github.com/arloliu/keysub/internal/logging"
	"github.com/arloliu/keysub/types"
)

// Default configuration values.
const (
	// DefaultSubjectPrefix is prepended to every subject.
	DefaultSubjectPrefix = "keysub"

	// DefaultPullBatch is the maximum number of samples released by one Pull.
	DefaultPullBatch = 256

	// DefaultPullBufferSize bounds the samples a core pull subscriber buffers.
	DefaultPullBufferSize = 1024

	// DefaultFetchTimeout bounds a JetStream fetch issued by Pull.
	DefaultFetchTimeout = 2 * time.Second

	// DefaultMaxRetries is the number of retries when creating a JetStream consumer.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the initial delay between retries.
	DefaultRetryBackoff = 100 * time.Millisecond

	// DefaultRetryMaxBackoff caps the delay between retries.
	DefaultRetryMaxBackoff = 2 * time.Second

	// DefaultRetryMultiplier grows the delay between retries.
	DefaultRetryMultiplier = 1.6

	// DefaultInactiveThreshold lets the server remove abandoned consumers.
	DefaultInactiveThreshold = 5 * time.Minute
)

// Config configures a Session.
//
// Zero values are replaced by defaults via applyDefaults().
type Config struct {
	// SubjectPrefix is prepended to every subject. Default: "keysub".
	SubjectPrefix string `yaml:"subjectPrefix"`

	// Stream is the JetStream stream backing reliable subscribers. It must capture
	// "<SubjectPrefix>.>". Empty disables JetStream and every subscriber uses core NATS.
	Stream string `yaml:"stream"`

	// PullBatch is the maximum number of samples released by one Pull.
	PullBatch int `yaml:"pullBatch"`

	// PullBufferSize bounds the samples a core pull subscriber buffers; NATS drops
	// the excess as a slow consumer.
	PullBufferSize int `yaml:"pullBufferSize"`

	// FetchTimeout bounds a JetStream fetch issued by Pull.
	FetchTimeout time.Duration `yaml:"fetchTimeout"`

	// MaxRetries is the number of retries when creating a JetStream consumer.
	MaxRetries int `yaml:"maxRetries"`

	// RetryBackoff is the initial delay between retries.
	RetryBackoff time.Duration `yaml:"retryBackoff"`

	// RetryMaxBackoff caps the delay between retries.
	RetryMaxBackoff time.Duration `yaml:"retryMaxBackoff"`

	// RetryMultiplier grows the delay between retries.
	RetryMultiplier float64 `yaml:"retryMultiplier"`

	// RetrySeed makes retry jitter deterministic when non-zero. Tests only.
	RetrySeed int64 `yaml:"-"`

	// InactiveThreshold lets the server remove consumers of crashed processes.
	InactiveThreshold time.Duration `yaml:"inactiveThreshold"`

	// SessionID is stamped on published samples. Default: a random UUID.
	SessionID string `yaml:"sessionId"`

	// Logger for diagnostic messages. Default: no-op.
	Logger types.Logger `yaml:"-"`
}

// applyDefaults fills unset optional fields with project defaults.
func (cfg *Config) applyDefaults() {
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = DefaultSubjectPrefix
	}
	if cfg.PullBatch == 0 {
		cfg.PullBatch = DefaultPullBatch
	}
	if cfg.PullBufferSize == 0 {
		cfg.PullBufferSize = DefaultPullBufferSize
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.RetryMaxBackoff == 0 {
		cfg.RetryMaxBackoff = DefaultRetryMaxBackoff
	}
	if cfg.RetryMultiplier == 0 {
		cfg.RetryMultiplier = DefaultRetryMultiplier
	}
	if cfg.InactiveThreshold == 0 {
		cfg.InactiveThreshold = DefaultInactiveThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
}
