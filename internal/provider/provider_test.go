package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/reviews/pkg/models"
)

// stubProvider returns canned reviews or a canned error.
type stubProvider struct {
	desc    Descriptor
	reviews []models.Review
	err     error
}

func (s *stubProvider) Descriptor() Descriptor { return s.desc }

func (s *stubProvider) GetReviews(ctx context.Context, url string) (*models.ReviewList, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.ReviewList{Reviews: s.reviews}, nil
}

func validReview(created time.Time) models.Review {
	rating := 5.0
	text := "fine"
	return models.Review{Rating: &rating, CreatedAt: created, Text: &text}
}

func TestDescriptor_MatchURL(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		url      string
		want     bool
	}{
		{
			name:     "single pattern match",
			patterns: []string{`https?://example\.com/reviews/.*`},
			url:      "https://example.com/reviews/product-1",
			want:     true,
		},
		{
			name:     "single pattern no match",
			patterns: []string{`https?://example\.com/reviews/.*`},
			url:      "https://other.com/reviews/product",
			want:     false,
		},
		{
			name:     "anchored at start",
			patterns: []string{`https://example\.com/`},
			url:      "https://evil.test/?u=https://example.com/",
			want:     false,
		},
		{
			name:     "pattern list first entry",
			patterns: []string{`jsonf://`, `https://example\.org/`},
			url:      "jsonf:///tmp/reviews.json",
			want:     true,
		},
		{
			name:     "pattern list later entry",
			patterns: []string{`jsonf://`, `https://example\.org/`},
			url:      "https://example.org/items",
			want:     true,
		},
		{
			name:     "unparsable pattern is skipped",
			patterns: []string{`[`, `https://example\.org/`},
			url:      "https://example.org/items",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Descriptor{Name: "t", URLPatterns: PatternList(tt.patterns)}
			if got := d.MatchURL(tt.url); got != tt.want {
				t.Errorf("MatchURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestError_KindClassification(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(KindParseError, "cannot parse reviews", cause)

	if !IsKind(err, KindParseError) {
		t.Error("expected KindParseError classification")
	}
	if IsKind(err, KindInvalidURL) {
		t.Error("did not expect KindInvalidURL classification")
	}
	if !errors.Is(err, cause) {
		t.Error("expected the cause to stay reachable through Unwrap")
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("expected empty kind for unclassified error, got %q", got)
	}
}

func TestError_WrappedKindSurvives(t *testing.T) {
	inner := NewError(KindInvalidURL, "file not found: /tmp/x.json", nil)
	wrapped := NewError(KindParseError, "fetch failed", inner)

	// The outermost classification wins; the original stays in the chain.
	if KindOf(wrapped) != KindParseError {
		t.Errorf("expected outer kind PARSE_ERROR, got %q", KindOf(wrapped))
	}
	var pe *Error
	if !errors.As(errors.Unwrap(wrapped), &pe) || pe.Kind != KindInvalidURL {
		t.Error("expected the invalid-URL cause in the chain")
	}
}

func TestCheckHealth_SpecificURL(t *testing.T) {
	p := &stubProvider{
		desc:    Descriptor{Name: "stub", TestURLs: []string{"https://a", "https://b"}},
		reviews: []models.Review{validReview(time.Now())},
	}

	results := CheckHealth(context.Background(), p, "https://only-this")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].IsHealthy {
		t.Errorf("expected healthy result, got %+v", results[0])
	}
	if results[0].URL != "https://only-this" {
		t.Errorf("expected checked URL in result, got %q", results[0].URL)
	}
	if results[0].ReviewsCount != 1 {
		t.Errorf("expected reviews_count 1, got %d", results[0].ReviewsCount)
	}
}

func TestCheckHealth_AllTestURLsInOrder(t *testing.T) {
	p := &stubProvider{
		desc:    Descriptor{Name: "stub", TestURLs: []string{"https://a", "https://b"}},
		reviews: []models.Review{validReview(time.Now())},
	}

	results := CheckHealth(context.Background(), p, "")
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://a" || results[1].URL != "https://b" {
		t.Errorf("expected results in test_urls order, got %q then %q", results[0].URL, results[1].URL)
	}
}

func TestCheckHealth_NoTestURLs(t *testing.T) {
	p := &stubProvider{desc: Descriptor{Name: "stub"}}

	results := CheckHealth(context.Background(), p, "")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].IsHealthy {
		t.Error("expected unhealthy result")
	}
	if results[0].Message != "No test URLs configured" {
		t.Errorf("unexpected message %q", results[0].Message)
	}
}

func TestCheckHealth_EmptyReviews(t *testing.T) {
	p := &stubProvider{
		desc: Descriptor{Name: "stub", TestURLs: []string{"https://example.com/reviews/product-1"}},
	}

	results := CheckHealth(context.Background(), p, "")
	if results[0].IsHealthy {
		t.Error("expected unhealthy result for empty reviews")
	}
	if !strings.Contains(results[0].Message, "No reviews found") {
		t.Errorf("expected message containing 'No reviews found', got %q", results[0].Message)
	}
}

func TestCheckHealth_FetchErrorNeverPropagates(t *testing.T) {
	p := &stubProvider{
		desc: Descriptor{Name: "stub", TestURLs: []string{"https://a"}},
		err:  NewError(KindNetworkError, "dial failed", nil),
	}

	results := CheckHealth(context.Background(), p, "")
	if results[0].IsHealthy {
		t.Error("expected unhealthy result")
	}
	if !strings.Contains(results[0].Message, "Error fetching reviews") {
		t.Errorf("expected fetch error message, got %q", results[0].Message)
	}
}

func TestCheckHealth_InvalidReviewFields(t *testing.T) {
	// Rating missing: fetch succeeds but per-review validation fails.
	p := &stubProvider{
		desc:    Descriptor{Name: "stub", TestURLs: []string{"https://a"}},
		reviews: []models.Review{{CreatedAt: time.Now()}},
	}

	results := CheckHealth(context.Background(), p, "")
	if results[0].IsHealthy {
		t.Error("expected unhealthy result")
	}
	if results[0].Message != "Review validation failed" {
		t.Errorf("unexpected message %q", results[0].Message)
	}
}

func TestFactory_InjectedClient(t *testing.T) {
	var seen *http.Client
	f := Factory{
		Descriptor: Descriptor{Name: "stub"},
		New: func(client *http.Client) (Provider, error) {
			seen = client
			return &stubProvider{desc: Descriptor{Name: "stub"}}, nil
		},
	}

	client := &http.Client{}
	if _, err := f.New(client); err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	if seen != client {
		t.Error("expected the injected client to reach the constructor")
	}
}
