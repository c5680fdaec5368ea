package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.CacheMaxEntries <= 0 {
		return fmt.Errorf("cache max entries must be > 0")
	}
	if c.RecordRPS <= 0 {
		return fmt.Errorf("record rate must be > 0")
	}
	switch c.MockFormat {
	case "yaml", "yml", "json":
	default:
		return fmt.Errorf("mock format must be yaml or json, got %q", c.MockFormat)
	}
	return nil
}
