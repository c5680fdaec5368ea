// Package dummy bundles a no-network provider used for exercising the
// registry, dispatch and health-check paths end to end.
package dummy

import (
	"context"
	"net/http"
	"time"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/internal/provider/loader"
	"github.com/law-makers/reviews/pkg/models"
)

var descriptor = provider.Descriptor{
	Name:        "dummy",
	Description: "A dummy provider for testing.",
	URLPatterns: provider.PatternList{`https?://example\.com/reviews/.*`},
	TestURLs: []string{
		"https://example.com/reviews/product-1",
		"https://example.com/reviews/product-2",
	},
}

func init() {
	loader.RegisterBuiltin(provider.Factory{
		Descriptor: descriptor,
		New: func(client *http.Client) (provider.Provider, error) {
			return &Provider{}, nil
		},
	})
}

// Provider returns fixed reviews for any matching URL.
type Provider struct{}

func (p *Provider) Descriptor() provider.Descriptor { return descriptor }

func (p *Provider) GetReviews(ctx context.Context, url string) (*models.ReviewList, error) {
	rating1, rating2 := 5.0, 4.0
	text1 := "This is a dummy review for testing."
	text2 := "Another dummy review."
	return &models.ReviewList{Reviews: []models.Review{
		{Rating: &rating1, Text: &text1, CreatedAt: time.Now()},
		{Rating: &rating2, Text: &text2, CreatedAt: time.Now()},
	}}, nil
}
