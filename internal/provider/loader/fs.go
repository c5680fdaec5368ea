package loader

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/internal/provider/driver"
)

const (
	// ManifestFile is the fixed-name file every plugin directory must hold.
	ManifestFile = "provider.yaml"

	// PluginsDirEnv overrides the default plugins root directory.
	PluginsDirEnv = "REVIEWS_PLUGINS_DIR"

	// DefaultPluginsDir is used when neither an explicit directory nor the
	// environment variable is set.
	DefaultPluginsDir = "plugins"
)

// manifest is the on-disk plugin description: a provider descriptor plus
// the driver that brings it to life.
type manifest struct {
	provider.Descriptor `yaml:",inline"`
	Driver              string    `yaml:"driver"`
	Options             yaml.Node `yaml:"options"`
}

// FS is the discovery strategy over a plugins directory. Each immediate
// subdirectory holds one plugin; names starting with "_" or "." are
// skipped, as is anything that fails to load.
type FS struct {
	Dir string
}

// NewFS resolves the plugins directory: explicit path, then the
// environment override, then the local default.
func NewFS(dir string) FS {
	if dir == "" {
		dir = os.Getenv(PluginsDirEnv)
	}
	if dir == "" {
		dir = DefaultPluginsDir
	}
	return FS{Dir: dir}
}

// Load scans the plugins directory. A nonexistent directory yields nothing.
func (l FS) Load() []provider.Factory {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		log.Debug().Str("dir", l.Dir).Err(err).Msg("Plugins directory not readable")
		return nil
	}

	var factories []provider.Factory
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		if f, ok := l.loadPlugin(name); ok {
			factories = append(factories, f)
		}
	}
	return factories
}

// loadPlugin reads one plugin directory. Every failure path logs and
// reports not-ok so the scan moves on.
func (l FS) loadPlugin(dirName string) (provider.Factory, bool) {
	path := filepath.Join(l.Dir, dirName, ManifestFile)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug().Str("plugin", dirName).Str("path", path).Msg("No provider manifest found")
		return provider.Factory{}, false
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		log.Warn().Str("plugin", dirName).Err(err).Msg("Failed to parse provider manifest")
		return provider.Factory{}, false
	}
	if m.Name == "" {
		log.Warn().Str("plugin", dirName).Msg("Provider manifest has no name")
		return provider.Factory{}, false
	}
	if len(m.URLPatterns) == 0 {
		log.Warn().Str("plugin", dirName).Str("provider", m.Name).
			Msg("Provider manifest has no url_regex")
		return provider.Factory{}, false
	}

	// Driver resolution: the manifest's explicit driver key first, then a
	// driver registered under the plugin directory's own name.
	driverName := m.Driver
	if driverName == "" {
		driverName = dirName
	}
	drv, ok := driver.Get(driverName)
	if !ok {
		log.Warn().Str("plugin", dirName).Str("driver", driverName).
			Strs("known", driver.Names()).
			Msg("No driver found for plugin")
		return provider.Factory{}, false
	}

	desc := m.Descriptor
	options := m.Options
	factory := provider.Factory{
		Descriptor: desc,
		New: func(client *http.Client) (provider.Provider, error) {
			return drv.Open(desc, &options, client)
		},
	}

	log.Debug().Str("plugin", dirName).Str("provider", m.Name).Str("driver", driverName).
		Msg("Loaded filesystem provider")
	return factory, true
}
