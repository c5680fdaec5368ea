package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.MockFormat != "yaml" {
		t.Errorf("mock format = %q, want yaml", cfg.MockFormat)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REVIEWS_USER_AGENT", "custom-agent/2.0")
	t.Setenv("REVIEWS_PLUGINS_DIR", "/opt/plugins")
	t.Setenv("REVIEWS_MOCKS_DIR", "/opt/mocks")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UserAgent != "custom-agent/2.0" {
		t.Errorf("user agent = %q", cfg.UserAgent)
	}
	if cfg.PluginsDir != "/opt/plugins" {
		t.Errorf("plugins dir = %q", cfg.PluginsDir)
	}
	if cfg.MocksDir != "/opt/mocks" {
		t.Errorf("mocks dir = %q", cfg.MocksDir)
	}
}

func TestLoadFlagOverrides(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	RegisterFlags(cmd)
	args := []string{"--verbose", "--timeout", "5s", "--mock-format", "json", "--plugins-dir", "./custom"}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.HTTPTimeout)
	}
	if cfg.MockFormat != "json" {
		t.Errorf("mock format = %q, want json", cfg.MockFormat)
	}
	if cfg.PluginsDir != "./custom" {
		t.Errorf("plugins dir = %q, want ./custom", cfg.PluginsDir)
	}
}

func TestLoadRejectsBadMockFormat(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	RegisterFlags(cmd)
	if err := cmd.ParseFlags([]string{"--mock-format", "toml"}); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(cmd); err == nil {
		t.Error("invalid mock format accepted")
	}
}
