// Package loader implements the two provider discovery strategies: the
// builtin list that compiled-in providers join at init, and the filesystem
// scan over declarative plugin directories. The strategies are independent;
// a broken plugin is logged and skipped, never fatal to the rest of the
// discovery pass.
package loader

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/reviews/internal/provider"
)

// Loader produces provider factories from one discovery strategy.
type Loader interface {
	Load() []provider.Factory
}

var (
	builtinsMu sync.Mutex
	builtins   []provider.Factory
)

// RegisterBuiltin adds a compiled-in provider to the builtin discovery list.
// Provider packages call this from init; the registry picks the list up on
// its first load.
func RegisterBuiltin(f provider.Factory) {
	builtinsMu.Lock()
	defer builtinsMu.Unlock()
	builtins = append(builtins, f)
}

// Builtins is the discovery strategy over compiled-in providers.
type Builtins struct{}

// Load returns the registered builtin factories in registration order.
// Registrations that do not conform to the provider contract are logged
// and skipped.
func (Builtins) Load() []provider.Factory {
	builtinsMu.Lock()
	defer builtinsMu.Unlock()

	factories := make([]provider.Factory, 0, len(builtins))
	for _, f := range builtins {
		if f.Descriptor.Name == "" {
			log.Warn().Msg("Skipping builtin provider with empty name")
			continue
		}
		if f.New == nil {
			log.Warn().Str("provider", f.Descriptor.Name).
				Msg("Skipping builtin provider without constructor")
			continue
		}
		factories = append(factories, f)
	}
	return factories
}
