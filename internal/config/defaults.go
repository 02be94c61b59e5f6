package config

import "time"

// DefaultConfig returns the baseline configuration: 3 attempts per
// task, 100ms initial backoff doubling up to 10s, no jitter, and no
// providers (those come from config files or flags).
func DefaultConfig() *Config {
	return &Config{
		Retry: RetrySettings{
			InitialInterval:     Duration(100 * time.Millisecond),
			MaxInterval:         Duration(10 * time.Second),
			Multiplier:          2.0,
			RandomizationFactor: 0,
		},
		Providers: map[string]ProviderConfig{},
		Tasks:     map[string]TaskConfig{},
	}
}
