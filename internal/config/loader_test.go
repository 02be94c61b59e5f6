package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// TestLoadDefaultsOnly verifies missing files fall back to defaults.
func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if time.Duration(cfg.Retry.InitialInterval) != 100*time.Millisecond {
		t.Errorf("InitialInterval = %v, want 100ms", time.Duration(cfg.Retry.InitialInterval))
	}
	if cfg.Retry.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0", cfg.Retry.Multiplier)
	}
	if cfg.MaxAttempts("answer") != 0 {
		t.Errorf("MaxAttempts for unconfigured task = %d, want 0", cfg.MaxAttempts("answer"))
	}
}

// TestLoadPrecedence verifies project config overrides global config
// overrides defaults, and maps are merged key by key.
func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()

	global := writeFile(t, dir, "global.yaml", `
provider: local
retry:
  initial_interval: 50ms
providers:
  local:
    command: modelctl
    model: base
tasks:
  answer:
    max_attempts: 5
  critique:
    max_attempts: 2
`)

	project := writeFile(t, dir, "project.yaml", `
retry:
  initial_interval: 10ms
  multiplier: 3.0
tasks:
  answer:
    max_attempts: 4
`)

	cfg, err := Load(global, project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if time.Duration(cfg.Retry.InitialInterval) != 10*time.Millisecond {
		t.Errorf("project initial_interval should win, got %v", time.Duration(cfg.Retry.InitialInterval))
	}
	if cfg.Retry.Multiplier != 3.0 {
		t.Errorf("Multiplier = %v, want 3.0", cfg.Retry.Multiplier)
	}
	if time.Duration(cfg.Retry.MaxInterval) != 10*time.Second {
		t.Errorf("untouched default MaxInterval changed: %v", time.Duration(cfg.Retry.MaxInterval))
	}
	if cfg.Provider != "local" {
		t.Errorf("Provider = %q, want local (from global)", cfg.Provider)
	}
	if cfg.Providers["local"].Command != "modelctl" {
		t.Errorf("provider command = %q", cfg.Providers["local"].Command)
	}
	if cfg.MaxAttempts("answer") != 4 {
		t.Errorf("answer max_attempts = %d, want project value 4", cfg.MaxAttempts("answer"))
	}
	if cfg.MaxAttempts("critique") != 2 {
		t.Errorf("critique max_attempts = %d, want global value 2", cfg.MaxAttempts("critique"))
	}
}

// TestLoadMalformedYAML verifies parse failures are reported.
func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "retry: [not a mapping")

	if _, err := Load(bad, ""); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

// TestDurationParsing verifies the string duration form and rejection
// of non-duration values.
func TestDurationParsing(t *testing.T) {
	dir := t.TempDir()

	good := writeFile(t, dir, "good.yaml", "retry:\n  max_interval: 2s\n")
	cfg, err := Load(good, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if time.Duration(cfg.Retry.MaxInterval) != 2*time.Second {
		t.Errorf("max_interval = %v, want 2s", time.Duration(cfg.Retry.MaxInterval))
	}

	bad := writeFile(t, dir, "bad.yaml", "retry:\n  max_interval: notaduration\n")
	if _, err := Load(bad, ""); err == nil || !strings.Contains(err.Error(), "duration") {
		t.Errorf("expected duration parse error, got %v", err)
	}
}
