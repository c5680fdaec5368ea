// Package reviews is the dispatch layer: it resolves a URL to a provider,
// runs the fetch, and hands back provenance-tagged, ordered reviews.
package reviews

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/reviews/internal/cache"
	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/internal/provider/registry"
	"github.com/law-makers/reviews/pkg/models"
)

// Service dispatches scrape requests through the provider registry.
type Service struct {
	registry *registry.Registry
	client   *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewService builds the dispatch service. The client is handed to every
// provider the service instantiates.
func NewService(reg *registry.Registry, client *http.Client, log zerolog.Logger) *Service {
	return &Service{registry: reg, client: client, log: log}
}

// SetCache enables caching of parsed review collections. Subsequent
// ParseReviews calls for the same URL inside ttl are served from memory.
func (s *Service) SetCache(c cache.Cache, ttl time.Duration) {
	s.cache = c
	s.cacheTTL = ttl
}

// ParseReviews resolves url to the first matching provider, fetches its
// reviews, sorts them newest-first and tags them with the provider name.
//
// No provider matching url is a no-matched-provider error. A network-level
// fetch failure is re-classified as a parse failure with the transport
// error chained as its cause.
func (s *Service) ParseReviews(ctx context.Context, url string) (*models.ProviderReviewList, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(url); ok {
			return cached, nil
		}
	}

	factory, err := s.registry.ProviderForURL(url)
	if err != nil {
		return nil, err
	}

	p, err := factory.New(s.client)
	if err != nil {
		return nil, provider.NewError(provider.KindParseError,
			"cannot construct provider "+factory.Descriptor.Name, err)
	}

	list, err := p.GetReviews(ctx, url)
	if err != nil {
		if provider.IsKind(err, provider.KindNetworkError) {
			return nil, provider.NewError(provider.KindParseError,
				"fetching reviews from "+url+" failed", err)
		}
		return nil, err
	}

	// Stable: reviews sharing a timestamp keep their source order.
	sort.SliceStable(list.Reviews, func(i, j int) bool {
		return list.Reviews[i].CreatedAt.After(list.Reviews[j].CreatedAt)
	})

	s.log.Debug().Str("provider", factory.Descriptor.Name).Str("url", url).
		Int("reviews", list.Count()).Msg("Parsed reviews")

	result := &models.ProviderReviewList{
		Provider: factory.Descriptor.Name,
		Reviews:  list.Reviews,
	}
	if s.cache != nil {
		if err := s.cache.Set(url, result, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("url", url).Msg("could not cache reviews")
		}
	}
	return result, nil
}

// ListProviders returns all registered providers sorted by name.
func (s *Service) ListProviders() []provider.Factory {
	return s.registry.List()
}

// ProviderFactory returns the factory registered under name.
func (s *Service) ProviderFactory(name string) (provider.Factory, error) {
	return s.registry.Get(name)
}

// Provider instantiates the provider registered under name.
func (s *Service) Provider(name string) (provider.Provider, error) {
	return s.registry.Instance(name, s.client)
}
