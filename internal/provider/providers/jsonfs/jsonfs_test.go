package jsonfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/reviews/internal/provider"
)

func TestProvider_MatchesScheme(t *testing.T) {
	p := &Provider{}
	if !p.Descriptor().MatchURL("jsonf://testdata/reviews.json") {
		t.Error("expected jsonf:// URL to match")
	}
	if p.Descriptor().MatchURL("https://example.com/reviews.json") {
		t.Error("did not expect https URL to match")
	}
}

func TestProvider_GetReviews(t *testing.T) {
	p := &Provider{}
	list, err := p.GetReviews(context.Background(), "jsonf://testdata/reviews.json")
	if err != nil {
		t.Fatalf("GetReviews failed: %v", err)
	}
	if list.Count() != 3 {
		t.Fatalf("expected 3 reviews, got %d", list.Count())
	}

	first := list.Reviews[0]
	if first.Rating == nil || *first.Rating != 5.0 {
		t.Errorf("expected rating 5.0, got %v", first.Rating)
	}
	if first.Text == nil || *first.Text != "Great product" {
		t.Errorf("expected text 'Great product', got %v", first.Text)
	}
	want := time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)
	if !first.CreatedAt.Equal(want) {
		t.Errorf("expected created_at %v, got %v", want, first.CreatedAt)
	}
}

func TestProvider_MissingFileIsInvalidURL(t *testing.T) {
	p := &Provider{}
	path := filepath.Join(t.TempDir(), "nope.json")

	_, err := p.GetReviews(context.Background(), Scheme+path)
	if !provider.IsKind(err, provider.KindInvalidURL) {
		t.Fatalf("expected INVALID_URL, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("expected the missing path in the message, got %q", err)
	}
}

func TestProvider_ContentFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"items": [`},
		{"no items key", `{"reviews": []}`},
		{"items not a list", `{"items": {"rating": 5}}`},
		{"item with numeric text", `{"items": [{"rating": 5, "created_at": "2020-01-01T10:00:00", "text": 1}]}`},
		{"item missing created_at", `{"items": [{"rating": 5}]}`},
	}

	p := &Provider{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reviews.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := p.GetReviews(context.Background(), Scheme+path)
			if !provider.IsKind(err, provider.KindParseError) {
				t.Errorf("expected PARSE_ERROR, got %v", err)
			}
		})
	}
}

func TestProvider_EmptyItemsIsNotAnError(t *testing.T) {
	// An empty list is a validation concern, not a parse failure; the
	// health check and the recorder flag it downstream.
	path := filepath.Join(t.TempDir(), "reviews.json")
	if err := os.WriteFile(path, []byte(`{"items": []}`), 0o644); err != nil {
		t.Fatal(err)
	}

	p := &Provider{}
	list, err := p.GetReviews(context.Background(), Scheme+path)
	if err != nil {
		t.Fatalf("GetReviews failed: %v", err)
	}
	if list.Count() != 0 {
		t.Errorf("expected 0 reviews, got %d", list.Count())
	}
}
