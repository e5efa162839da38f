package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultMaxAttempts     = 5
	defaultRetryWindow     = 24 * time.Hour
	defaultSweepBatchSize  = 10
	defaultRequestTimeout  = 30 * time.Second
	defaultResponseBodyCap = 1024
)

// EndpointConfig is the per-deployment destination. An empty URL means
// webhooks are disabled; dispatch becomes a silent no-op rather than an
// error.
type EndpointConfig struct {
	URL    string   `koanf:"url" mapstructure:"url"`
	Secret string   `koanf:"secret" mapstructure:"secret"`
	Events []string `koanf:"events" mapstructure:"events"`
}

func (c EndpointConfig) Configured() bool {
	return strings.TrimSpace(c.URL) != ""
}

func (c EndpointConfig) Enabled(eventType string) bool {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return false
	}
	for _, enabled := range c.Events {
		if strings.EqualFold(strings.TrimSpace(enabled), eventType) {
			return true
		}
	}
	return false
}

type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts" mapstructure:"max_attempts"`
	Window      time.Duration `koanf:"window" mapstructure:"window"`
	BatchSize   int           `koanf:"batch_size" mapstructure:"batch_size"`
}

// IdentityConfig names the deployment in every envelope so the receiver can
// tell installations apart.
type IdentityConfig struct {
	Name string `koanf:"name" mapstructure:"name"`
	URL  string `koanf:"url" mapstructure:"url"`
}

type Config struct {
	ServiceName     string         `koanf:"service_name" mapstructure:"service_name"`
	Endpoint        EndpointConfig `koanf:"endpoint" mapstructure:"endpoint"`
	Identity        IdentityConfig `koanf:"identity" mapstructure:"identity"`
	Retry           RetryConfig    `koanf:"retry" mapstructure:"retry"`
	RequestTimeout  time.Duration  `koanf:"request_timeout" mapstructure:"request_timeout"`
	ResponseBodyCap int            `koanf:"response_body_cap" mapstructure:"response_body_cap"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "outbound",
		Retry: RetryConfig{
			MaxAttempts: defaultMaxAttempts,
			Window:      defaultRetryWindow,
			BatchSize:   defaultSweepBatchSize,
		},
		RequestTimeout:  defaultRequestTimeout,
		ResponseBodyCap: defaultResponseBodyCap,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("core: retry.max_attempts must be >= 1")
	}
	if c.Retry.BatchSize < 1 {
		return fmt.Errorf("core: retry.batch_size must be >= 1")
	}
	if c.Retry.Window <= 0 {
		return fmt.Errorf("core: retry.window must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("core: request_timeout must be positive")
	}
	if c.ResponseBodyCap < 1 {
		return fmt.Errorf("core: response_body_cap must be >= 1")
	}
	return nil
}
