package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML files can use "100ms" / "2s"
// notation.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"100ms\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// RetrySettings configures backoff between task attempts.
type RetrySettings struct {
	InitialInterval     Duration `yaml:"initial_interval"`
	MaxInterval         Duration `yaml:"max_interval"`
	Multiplier          float64  `yaml:"multiplier"`
	RandomizationFactor float64  `yaml:"randomization_factor"`
}

// ProviderConfig defines one model transport: a local command invoked
// with the prompt on stdin.
type ProviderConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Model   string   `yaml:"model,omitempty"`
}

// TaskConfig overrides per-task invocation settings.
type TaskConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// Config is the top-level configuration.
type Config struct {
	Provider    string                    `yaml:"provider"` // key into Providers
	Retry       RetrySettings             `yaml:"retry"`
	Providers   map[string]ProviderConfig `yaml:"providers"`
	Tasks       map[string]TaskConfig     `yaml:"tasks"`
	HistoryPath string                    `yaml:"history_path,omitempty"`
}

// MaxAttempts returns the configured attempt bound for a task, or 0
// when the task has no override.
func (c *Config) MaxAttempts(task string) int {
	if tc, ok := c.Tasks[task]; ok {
		return tc.MaxAttempts
	}
	return 0
}
