package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel    = "info"
	DefaultJSONLog     = false
	DefaultUserAgent   = "Reviews/1.0 (https://github.com/law-makers/reviews)"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultMockFormat  = "yaml"

	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheMaxEntries = 1024

	DefaultRecordRPS   = 2.0
	DefaultRecordBurst = 4
)
