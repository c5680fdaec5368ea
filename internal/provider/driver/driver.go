// Package driver implements the declarative plugin drivers behind
// filesystem providers. A plugin directory supplies a manifest naming a
// driver plus driver-specific options; the driver turns that manifest into
// a working Provider. Drivers register themselves at init.
package driver

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/law-makers/reviews/internal/provider"
)

// Driver builds a Provider from a plugin manifest.
type Driver interface {
	// Name is the identifier plugins reference in their manifest.
	Name() string

	// Open validates the manifest options and returns a ready provider.
	// The injected client is the one the provider must use for all HTTP
	// traffic so the record/replay harness can intercept it.
	Open(desc provider.Descriptor, options *yaml.Node, client *http.Client) (provider.Provider, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Driver{}
)

// Register adds a driver under its lowercased name. Later registrations
// replace earlier ones.
func Register(d Driver) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(d.Name())] = d
}

// Get returns the driver registered under name.
func Get(name string) (Driver, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := registry[strings.ToLower(name)]
	return d, ok
}

// Names lists the registered driver names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeOptions fills dst from the manifest's options node. A missing
// options block leaves dst at its zero value.
func decodeOptions(options *yaml.Node, dst any) error {
	if options == nil || options.Kind == 0 {
		return nil
	}
	return options.Decode(dst)
}
