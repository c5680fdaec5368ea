// Package jsonfs bundles a provider that reads reviews from local JSON
// files addressed as jsonf://<filepath>. It is the reference for the
// invalid-URL versus parse-failure distinction: a missing file is a bad
// address, a present-but-broken file is bad content.
package jsonfs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/internal/provider/loader"
	"github.com/law-makers/reviews/pkg/models"
)

// Scheme prefixes every URL this provider accepts.
const Scheme = "jsonf://"

var descriptor = provider.Descriptor{
	Name:        "jsonfs",
	Description: "JSON file provider",
	Notes: `jsonf://<filepath>
Expected file structure:

{
  "items": [
    {
      "pros": "string, optional",
      "cons": "string, optional",
      "rating": 1.0 - 5.0,
      "summary": "string, optional",
      "text": "string, required",
      "created_at": "ISO 8601 datetime, required"
    }
  ]
}`,
	URLPatterns: provider.PatternList{Scheme},
	TestURLs:    []string{Scheme + "testdata/reviews.json"},
	InvalidURLs: []string{Scheme + "testdata/no-such-file.json"},
}

func init() {
	loader.RegisterBuiltin(provider.Factory{
		Descriptor: descriptor,
		New: func(client *http.Client) (provider.Provider, error) {
			return &Provider{}, nil
		},
	})
}

// Provider reads review files from the local filesystem.
type Provider struct{}

func (p *Provider) Descriptor() provider.Descriptor { return descriptor }

// document is the expected top-level file shape. Items stay raw so field
// typing is checked per item.
type document struct {
	Items *[]map[string]any `json:"items"`
}

func (p *Provider) GetReviews(ctx context.Context, url string) (*models.ReviewList, error) {
	path := strings.TrimPrefix(url, Scheme)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, provider.NewError(provider.KindInvalidURL,
				fmt.Sprintf("file not found: %s", path), err)
		}
		return nil, provider.NewError(provider.KindInvalidURL,
			fmt.Sprintf("cannot read file: %s", path), err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, provider.NewError(provider.KindParseError, "cannot parse JSON", err)
	}
	if doc.Items == nil {
		return nil, provider.NewError(provider.KindParseError, "no items in JSON", nil)
	}

	reviews := make([]models.Review, 0, len(*doc.Items))
	for i, item := range *doc.Items {
		review, err := models.ReviewFromRepresentation(item)
		if err != nil {
			return nil, provider.NewError(provider.KindParseError,
				fmt.Sprintf("item %d is not a valid review", i), err)
		}
		reviews = append(reviews, review)
	}

	return &models.ReviewList{Reviews: reviews}, nil
}
