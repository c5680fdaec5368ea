package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL performs comprehensive URL validation
func ValidateURL(urlStr string) error {
	// Provider-private schemes like jsonf:// pass through untouched
	if idx := strings.Index(urlStr, "://"); idx > 0 {
		scheme := urlStr[:idx]
		if scheme != "http" && scheme != "https" {
			return nil
		}
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}
