// Package models defines the review data model shared by providers,
// the registry and the record/replay harness.
package models

import (
	"fmt"
	"time"
)

// Review is a single product review as extracted by a provider.
//
// A review is valid when both CreatedAt and Rating are set; the optional
// string fields may be nil. Reviews are constructed once by a provider and
// never mutated afterwards.
type Review struct {
	Rating    *float64  `json:"rating" yaml:"rating"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Text      *string   `json:"text" yaml:"text"`
	Pros      *string   `json:"pros" yaml:"pros"`
	Cons      *string   `json:"cons" yaml:"cons"`
	Summary   *string   `json:"summary" yaml:"summary"`
}

// createdAtLayouts are the accepted timestamp formats for representations.
// Fixtures written by hand commonly omit the zone offset.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// ToRepresentation converts the review to its plain form used for mock
// fixtures and caching. The timestamp is rendered as ISO-8601; unset fields
// are present with a nil value so the record shape stays stable.
func (r Review) ToRepresentation() map[string]any {
	rep := map[string]any{
		"rating":     nil,
		"created_at": r.CreatedAt.Format(time.RFC3339Nano),
		"text":       nil,
		"pros":       nil,
		"cons":       nil,
		"summary":    nil,
	}
	if r.Rating != nil {
		rep["rating"] = *r.Rating
	}
	if r.Text != nil {
		rep["text"] = *r.Text
	}
	if r.Pros != nil {
		rep["pros"] = *r.Pros
	}
	if r.Cons != nil {
		rep["cons"] = *r.Cons
	}
	if r.Summary != nil {
		rep["summary"] = *r.Summary
	}
	return rep
}

// ReviewFromRepresentation rebuilds a Review from its plain form.
//
// Field types are checked strictly: a representation carrying a non-string
// text field or a non-numeric rating is rejected rather than coerced, so a
// broken fixture fails loudly instead of producing a half-valid review.
func ReviewFromRepresentation(rep map[string]any) (Review, error) {
	var review Review

	raw, ok := rep["created_at"]
	if !ok || raw == nil {
		return Review{}, fmt.Errorf("review created_at is required")
	}
	switch v := raw.(type) {
	case string:
		ts, err := parseCreatedAt(v)
		if err != nil {
			return Review{}, err
		}
		review.CreatedAt = ts
	case time.Time:
		// yaml.v3 decodes ISO-8601 scalars to time.Time directly.
		review.CreatedAt = v
	default:
		return Review{}, fmt.Errorf("review created_at must be a timestamp, got %T", raw)
	}

	if raw, ok := rep["rating"]; ok && raw != nil {
		rating, err := toFloat(raw)
		if err != nil {
			return Review{}, fmt.Errorf("review rating must be a number, got %T", raw)
		}
		review.Rating = &rating
	}

	for _, field := range []struct {
		name string
		dst  **string
	}{
		{"text", &review.Text},
		{"pros", &review.Pros},
		{"cons", &review.Cons},
		{"summary", &review.Summary},
	} {
		raw, ok := rep[field.name]
		if !ok || raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return Review{}, fmt.Errorf("review %s must be a string, got %T", field.name, raw)
		}
		*field.dst = &s
	}

	return review, nil
}

func parseCreatedAt(s string) (time.Time, error) {
	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("review created_at %q is not an ISO-8601 timestamp", s)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("not a number")
}

// ReviewList is a collection of reviews owned by a single provider run.
type ReviewList struct {
	Reviews []Review `json:"reviews" yaml:"reviews"`
}

// Count returns the number of reviews in the list.
func (l *ReviewList) Count() int {
	return len(l.Reviews)
}

// ProviderReviewList is a ReviewList tagged with the provider it came from.
// Only the dispatch service produces this form; providers return plain lists.
type ProviderReviewList struct {
	Provider string   `json:"provider" yaml:"provider"`
	Reviews  []Review `json:"reviews" yaml:"reviews"`
}

// Count returns the number of reviews in the list.
func (l *ProviderReviewList) Count() int {
	return len(l.Reviews)
}

// HealthCheckResult is the outcome of exercising one provider URL.
// It is reported, never persisted.
type HealthCheckResult struct {
	IsHealthy    bool   `json:"is_healthy"`
	Message      string `json:"message"`
	URL          string `json:"url,omitempty"`
	ReviewsCount int    `json:"reviews_count"`
}
