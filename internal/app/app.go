// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/reviews/internal/cache"
	"github.com/law-makers/reviews/internal/config"
	"github.com/law-makers/reviews/internal/provider/loader"
	_ "github.com/law-makers/reviews/internal/provider/providers"
	"github.com/law-makers/reviews/internal/provider/registry"
	"github.com/law-makers/reviews/internal/ratelimit"
	"github.com/law-makers/reviews/internal/recorder"
	"github.com/law-makers/reviews/internal/reviews"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	HTTPClient *http.Client
	Cache      cache.Cache
	Registry   *registry.Registry
	Service    *reviews.Service
	Recorder   *recorder.Recorder
	startTime  time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Initializes the HTTP client with proper timeouts and user agent
//   - Creates the provider registry over the builtin and plugin loaders
//   - Creates the review dispatch service
//   - Creates the recorder over the mock and response cache stores
//
// If any step fails, an error is returned and no resources are allocated.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Initialize logger based on config
	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	// Create HTTP client
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &userAgentTransport{
			agent: cfg.UserAgent,
			base: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DisableKeepAlives:   false,
			},
		},
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Str("user_agent", cfg.UserAgent).
		Msg("HTTP client initialized")

	// Create provider registry over builtin providers plus plugin scan
	reg := registry.New(loader.Builtins{}, loader.NewFS(cfg.PluginsDir))
	logger.Debug().
		Str("plugins_dir", cfg.PluginsDir).
		Msg("Provider registry initialized")

	// Create review cache
	memCache := cache.NewMemoryCache(cfg.CacheMaxEntries)
	logger.Debug().
		Int("max_entries", cfg.CacheMaxEntries).
		Dur("ttl", cfg.CacheTTL).
		Msg("Review cache initialized")

	// Create dispatch service
	service := reviews.NewService(reg, httpClient, logger)
	service.SetCache(memCache, cfg.CacheTTL)

	// Create recorder over the configured fixture stores
	storage, err := recorder.StorageFor(cfg.MockFormat)
	if err != nil {
		return nil, err
	}
	rec := recorder.NewRecorder(
		recorder.NewMockStore(cfg.MocksDir, storage),
		recorder.NewResponseCache(cfg.CacheDir),
		cfg.HTTPTimeout,
		logger,
	)
	rec.SetRateLimiter(ratelimit.NewDomainLimiter(cfg.RecordRPS, cfg.RecordBurst))
	logger.Debug().
		Str("mock_format", cfg.MockFormat).
		Float64("record_rps", cfg.RecordRPS).
		Msg("Recorder initialized")

	app := &Application{
		Config:     cfg,
		Logger:     &logger,
		HTTPClient: httpClient,
		Cache:      memCache,
		Registry:   reg,
		Service:    service,
		Recorder:   rec,
		startTime:  time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// Close gracefully shuts down the application and all its resources.
//
// Any errors during shutdown are logged but do not prevent other
// shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	if a.Cache != nil {
		a.Cache.Close()
	}

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}

// userAgentTransport stamps the configured user agent on requests that do
// not already carry one.
type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.agent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.agent)
	}
	return t.base.RoundTrip(req)
}
