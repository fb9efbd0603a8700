package keysub

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/keysub/handler"
	"github.com/arloliu/keysub/types"
)

// ChannelCapacityEnv overrides the process-wide default channel capacity.
const ChannelCapacityEnv = "KEYSUB_CHANNEL_CAPACITY"

// Config is the configuration for a Client.
//
// All duration fields accept standard Go duration strings like "500ms", "5s".
type Config struct {
	// ChannelCapacity is the receiver capacity used by handler-backed subscriptions
	// that do not configure their own.
	//
	// Default: DefaultChannelCapacity() (256 unless KEYSUB_CHANNEL_CAPACITY is set)
	ChannelCapacity int `yaml:"channelCapacity"`

	// DefaultReliability is the reliability new builders start with.
	//
	// Default: reliable
	DefaultReliability types.Reliability `yaml:"defaultReliability"`

	// SubscriberDefaults is a property string applied on top of DefaultReliability,
	// e.g. "reliability=best_effort;mode=pull;period=100ms".
	SubscriberDefaults string `yaml:"subscriberDefaults"`

	// ExecutorPoolSize bounds the goroutine pool that runs cooperatively resolved
	// actions. Ignored when WithExecutor is used.
	//
	// Default: 64
	ExecutorPoolSize int `yaml:"executorPoolSize"`

	// DropTimeout bounds the best-effort undeclare issued when a subscriber is dropped.
	//
	// Default: 5 seconds
	DropTimeout time.Duration `yaml:"dropTimeout"`
}

var defaultChannelCapacity = sync.OnceValue(func() int {
	if v := os.Getenv(ChannelCapacityEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}

	return handler.DefaultCapacity
})

// DefaultChannelCapacity returns the process-wide default channel capacity.
//
// The value is read once from KEYSUB_CHANNEL_CAPACITY; unset or invalid values fall
// back to handler.DefaultCapacity.
func DefaultChannelCapacity() int {
	return defaultChannelCapacity()
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		ChannelCapacity:    DefaultChannelCapacity(),
		DefaultReliability: types.Reliable,
		ExecutorPoolSize:   64,
		DropTimeout:        5 * time.Second,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.ChannelCapacity == 0 {
		cfg.ChannelCapacity = defaults.ChannelCapacity
	}
	if cfg.ExecutorPoolSize == 0 {
		cfg.ExecutorPoolSize = defaults.ExecutorPoolSize
	}
	if cfg.DropTimeout == 0 {
		cfg.DropTimeout = defaults.DropTimeout
	}
	// DefaultReliability zero value is Reliable, nothing to fill in
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Returns:
//   - error: ErrInvalidConfig wrapped with an explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.ChannelCapacity <= 0 {
		return fmt.Errorf("%w: ChannelCapacity must be > 0, got %d", ErrInvalidConfig, cfg.ChannelCapacity)
	}
	if cfg.ExecutorPoolSize <= 0 {
		return fmt.Errorf("%w: ExecutorPoolSize must be > 0, got %d", ErrInvalidConfig, cfg.ExecutorPoolSize)
	}
	if cfg.DropTimeout <= 0 {
		return fmt.Errorf("%w: DropTimeout must be > 0, got %v", ErrInvalidConfig, cfg.DropTimeout)
	}
	if cfg.DefaultReliability != types.Reliable && cfg.DefaultReliability != types.BestEffort {
		return fmt.Errorf("%w: unknown DefaultReliability %d", ErrInvalidConfig, cfg.DefaultReliability)
	}
	if _, err := cfg.subInfoDefaults(); err != nil {
		return err
	}

	return nil
}

// ValidateWithWarnings logs warnings for values that are valid but unusual.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.ChannelCapacity < 8 {
		logger.Warn(
			"ChannelCapacity is very small, bursts will be dropped",
			"channelCapacity", cfg.ChannelCapacity,
			"recommended", handler.DefaultCapacity,
		)
	}
}

// subInfoDefaults resolves the SubInfo new builders start from.
func (cfg *Config) subInfoDefaults() (types.SubInfo, error) {
	base := types.SubInfo{Reliability: cfg.DefaultReliability, Mode: types.Push}
	if cfg.SubscriberDefaults == "" {
		return base, nil
	}

	info, err := types.ParseSubInfo(base, cfg.SubscriberDefaults)
	if err != nil {
		return base, fmt.Errorf("invalid SubscriberDefaults: %w", err)
	}

	return info, nil
}

// LoadConfig reads a YAML configuration file and applies defaults.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - Config: Parsed configuration with defaults applied
//   - error: Read, parse or validation failure
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML configuration data and applies defaults.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// TestConfig returns a configuration suited for tests: small channels, a small pool
// and a short drop timeout.
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.ChannelCapacity = 16
	cfg.ExecutorPoolSize = 4
	cfg.DropTimeout = time.Second

	return cfg
}
