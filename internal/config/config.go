package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// HTTP
	HTTPTimeout time.Duration
	UserAgent   string

	// Plugins
	PluginsDir string

	// Review caching
	CacheTTL        time.Duration
	CacheMaxEntries int

	// Recording
	MocksDir    string
	CacheDir    string
	MockFormat  string
	RecordRPS   float64
	RecordBurst int
}

// Load builds a Config by combining defaults, environment variables, and
// CLI flags. Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		HTTPTimeout:     DefaultHTTPTimeout,
		UserAgent:       DefaultUserAgent,
		MockFormat:      DefaultMockFormat,
		CacheTTL:        DefaultCacheTTL,
		CacheMaxEntries: DefaultCacheMaxEntries,
		RecordRPS:       DefaultRecordRPS,
		RecordBurst:     DefaultRecordBurst,
	}

	// Override from environment variables (simple helpers)
	if v := os.Getenv("REVIEWS_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("REVIEWS_PLUGINS_DIR"); v != "" {
		cfg.PluginsDir = v
	}
	if v := os.Getenv("REVIEWS_MOCKS_DIR"); v != "" {
		cfg.MocksDir = v
	}
	if v := os.Getenv("REVIEWS_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := cmd.Flags().Lookup("plugins-dir"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.PluginsDir = s
			}
		}
		if f := cmd.Flags().Lookup("mocks-dir"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.MocksDir = s
			}
		}
		if f := cmd.Flags().Lookup("cache-dir"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.CacheDir = s
			}
		}
		if f := cmd.Flags().Lookup("mock-format"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.MockFormat = s
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.HTTPTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
		if f := cmd.Flags().Lookup("quiet"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "error"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
