// Package registry owns the merged provider set: the single answer to
// "what providers exist" for the dispatch service and the CLI.
package registry

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/internal/provider/loader"
)

// Registry merges the loader strategies into a name-keyed provider set,
// loaded lazily on first query and cached until ClearCache.
//
// Lookups by URL scan in insertion (load) order and return the first match;
// a later loader overwriting a name keeps the original position, so the
// filesystem strategy can shadow a builtin without reordering the scan.
// List is sorted by name instead, for deterministic output.
//
// A Registry instance is not safe for concurrent use; each instance keeps
// its own cache.
type Registry struct {
	loaders []loader.Loader

	loaded bool
	order  []string
	byName map[string]provider.Factory
}

// New builds a registry over the given discovery strategies, consulted in
// order on each load. With no arguments it uses the standard pair: builtin
// providers first, then the filesystem plugins directory.
func New(loaders ...loader.Loader) *Registry {
	if len(loaders) == 0 {
		loaders = []loader.Loader{loader.Builtins{}, loader.NewFS("")}
	}
	return &Registry{loaders: loaders}
}

// ensure populates the cache on first use. Duplicate names merge
// last-write-wins with no warning; that is the documented shadowing
// mechanism, not an error.
func (r *Registry) ensure() {
	if r.loaded {
		return
	}

	r.order = nil
	r.byName = make(map[string]provider.Factory)
	for _, l := range r.loaders {
		for _, f := range l.Load() {
			name := f.Descriptor.Name
			if _, exists := r.byName[name]; !exists {
				r.order = append(r.order, name)
			}
			r.byName[name] = f
		}
	}
	r.loaded = true

	log.Debug().Int("providers", len(r.order)).Msg("Provider registry loaded")
}

// ClearCache drops the cached provider set; the next query reloads from
// every strategy.
func (r *Registry) ClearCache() {
	r.loaded = false
	r.order = nil
	r.byName = nil
}

// ProviderForURL returns the first provider, in load order, whose pattern
// matches url.
func (r *Registry) ProviderForURL(url string) (provider.Factory, error) {
	r.ensure()
	for _, name := range r.order {
		f := r.byName[name]
		if f.Descriptor.MatchURL(url) {
			return f, nil
		}
	}
	return provider.Factory{}, provider.NewError(provider.KindNoMatchedProvider,
		fmt.Sprintf("no provider found for URL: %s", url), nil)
}

// List returns all providers sorted ascending by name.
func (r *Registry) List() []provider.Factory {
	r.ensure()
	factories := make([]provider.Factory, 0, len(r.order))
	for _, name := range r.order {
		factories = append(factories, r.byName[name])
	}
	sort.Slice(factories, func(i, j int) bool {
		return factories[i].Descriptor.Name < factories[j].Descriptor.Name
	})
	return factories
}

// Names returns the provider names sorted ascending.
func (r *Registry) Names() []string {
	names := make([]string, 0)
	for _, f := range r.List() {
		names = append(names, f.Descriptor.Name)
	}
	return names
}

// Get returns the factory registered under the exact name.
func (r *Registry) Get(name string) (provider.Factory, error) {
	r.ensure()
	f, ok := r.byName[name]
	if !ok {
		return provider.Factory{}, provider.NewError(provider.KindProviderNotFound,
			fmt.Sprintf("no provider named %q", name), nil)
	}
	return f, nil
}

// Instance constructs a provider by name with the given HTTP client.
func (r *Registry) Instance(name string, client *http.Client) (provider.Provider, error) {
	f, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return f.New(client)
}
