// Package provider defines the contract every review source plugin
// implements: identity, URL-pattern matching, review extraction and the
// derived health check.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/law-makers/reviews/pkg/models"
)

// PatternList holds one or more URL regular expressions. In a plugin
// manifest it may be written as a single scalar or as a sequence.
type PatternList []string

// UnmarshalYAML accepts both the scalar and the sequence form.
func (p *PatternList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*p = PatternList{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*p = PatternList(list)
		return nil
	}
	return fmt.Errorf("url_regex must be a string or a list of strings")
}

// Descriptor is the static identity of a provider: its registry key, the
// URL patterns it claims, and the URLs used for self-testing.
//
// Name must be unique across loaded providers; when two providers share a
// name the one loaded last wins in the registry merge.
type Descriptor struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Notes       string      `yaml:"notes"`
	URLPatterns PatternList `yaml:"url_regex"`
	TestURLs    []string    `yaml:"test_urls"`
	InvalidURLs []string    `yaml:"invalid_urls"`
}

// MatchURL reports whether url matches one of the descriptor's patterns.
// Patterns are anchored at the start of the URL and evaluated in list order,
// returning on the first hit. The predicate is pure; order only affects how
// soon it exits.
func (d Descriptor) MatchURL(url string) bool {
	for _, pattern := range d.URLPatterns {
		re, err := regexp.Compile(anchor(pattern))
		if err != nil {
			log.Warn().Str("provider", d.Name).Str("pattern", pattern).Err(err).
				Msg("Skipping unparsable URL pattern")
			continue
		}
		if re.MatchString(url) {
			log.Debug().Str("provider", d.Name).Str("url", url).Msg("URL matched")
			return true
		}
	}
	return false
}

// anchor pins a pattern to the start of the subject without changing its
// meaning otherwise.
func anchor(pattern string) string {
	if strings.HasPrefix(pattern, "^") {
		return pattern
	}
	return "^(?:" + pattern + ")"
}

// Provider is the capability every review source implements.
//
// GetReviews fetches and parses reviews from url. Implementations classify
// failures: an address that structurally cannot exist is KindInvalidURL,
// reachable-but-uninterpretable content is KindParseError carrying its cause,
// and transport failures are KindNetworkError. An empty source is a parse
// failure, never a silently empty list.
type Provider interface {
	Descriptor() Descriptor
	GetReviews(ctx context.Context, url string) (*models.ReviewList, error)
}

// Factory pairs a descriptor with a constructor. The HTTP client is injected
// so the record/replay harness can substitute transports without the provider
// noticing.
type Factory struct {
	Descriptor Descriptor
	New        func(client *http.Client) (Provider, error)
}
