package registry

import (
	"context"
	"net/http"
	"testing"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/pkg/models"
)

// countingLoader yields fixed factories and counts how often it is asked.
type countingLoader struct {
	factories []provider.Factory
	calls     int
}

func (l *countingLoader) Load() []provider.Factory {
	l.calls++
	return l.factories
}

type nopProvider struct{ desc provider.Descriptor }

func (p *nopProvider) Descriptor() provider.Descriptor { return p.desc }

func (p *nopProvider) GetReviews(ctx context.Context, url string) (*models.ReviewList, error) {
	return &models.ReviewList{}, nil
}

func factoryFor(name, pattern string) provider.Factory {
	desc := provider.Descriptor{Name: name, URLPatterns: provider.PatternList{pattern}}
	return provider.Factory{
		Descriptor: desc,
		New: func(client *http.Client) (provider.Provider, error) {
			return &nopProvider{desc: desc}, nil
		},
	}
}

func TestRegistry_LazyLoadOnce(t *testing.T) {
	l := &countingLoader{factories: []provider.Factory{factoryFor("a", `https://a\.example/.*`)}}
	r := New(l)

	if l.calls != 0 {
		t.Fatalf("expected no discovery before first query, got %d calls", l.calls)
	}

	first := r.List()
	second := r.List()
	if l.calls != 1 {
		t.Errorf("expected discovery to run exactly once, got %d calls", l.calls)
	}
	if len(first) != 1 || len(second) != 1 || first[0].Descriptor.Name != second[0].Descriptor.Name {
		t.Errorf("expected identical results across queries")
	}
}

func TestRegistry_ClearCacheForcesReload(t *testing.T) {
	l := &countingLoader{factories: []provider.Factory{factoryFor("a", `https://a\.example/.*`)}}
	r := New(l)

	r.List()
	r.ClearCache()
	r.List()

	if l.calls != 2 {
		t.Errorf("expected discovery to run again after ClearCache, got %d calls", l.calls)
	}
}

func TestRegistry_ListSortedByName(t *testing.T) {
	l := &countingLoader{factories: []provider.Factory{
		factoryFor("zeta", `https://z\.example/.*`),
		factoryFor("alpha", `https://a\.example/.*`),
		factoryFor("mid", `https://m\.example/.*`),
	}}
	r := New(l)

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("expected sorted names %v, got %v", want, names)
		}
	}
}

func TestRegistry_ProviderForURLScansInLoadOrder(t *testing.T) {
	// Both patterns match; the first-loaded provider must win even though
	// it sorts after the other.
	l := &countingLoader{factories: []provider.Factory{
		factoryFor("zeta", `https://shared\.example/.*`),
		factoryFor("alpha", `https://shared\.example/.*`),
	}}
	r := New(l)

	f, err := r.ProviderForURL("https://shared.example/reviews")
	if err != nil {
		t.Fatalf("ProviderForURL failed: %v", err)
	}
	if f.Descriptor.Name != "zeta" {
		t.Errorf("expected first-loaded provider 'zeta', got %q", f.Descriptor.Name)
	}
}

func TestRegistry_ProviderForURLNoMatch(t *testing.T) {
	r := New(&countingLoader{})

	_, err := r.ProviderForURL("https://unknown.example/x")
	if !provider.IsKind(err, provider.KindNoMatchedProvider) {
		t.Errorf("expected NO_MATCHED_PROVIDER, got %v", err)
	}
}

func TestRegistry_LastLoaderWinsKeepsPosition(t *testing.T) {
	// The filesystem strategy shadows a builtin of the same name. The
	// replacement must take effect without moving the scan position.
	builtin := &countingLoader{factories: []provider.Factory{
		factoryFor("shadowed", `https://first\.example/.*`),
		factoryFor("other", `https://other\.example/.*`),
	}}
	fs := &countingLoader{factories: []provider.Factory{
		factoryFor("shadowed", `https://second\.example/.*`),
	}}
	r := New(builtin, fs)

	if _, err := r.ProviderForURL("https://first.example/x"); err == nil {
		t.Error("expected the builtin pattern to be gone after shadowing")
	}
	f, err := r.ProviderForURL("https://second.example/x")
	if err != nil {
		t.Fatalf("expected the filesystem provider to match: %v", err)
	}
	if f.Descriptor.Name != "shadowed" {
		t.Errorf("expected 'shadowed', got %q", f.Descriptor.Name)
	}

	if len(r.List()) != 2 {
		t.Errorf("expected 2 providers after merge, got %d", len(r.List()))
	}
}

func TestRegistry_GetAndInstance(t *testing.T) {
	r := New(&countingLoader{factories: []provider.Factory{
		factoryFor("dummy", `https://example\.com/reviews/.*`),
	}})

	if _, err := r.Get("dummy"); err != nil {
		t.Errorf("Get failed: %v", err)
	}
	_, err := r.Get("missing")
	if !provider.IsKind(err, provider.KindProviderNotFound) {
		t.Errorf("expected PROVIDER_NOT_FOUND, got %v", err)
	}

	p, err := r.Instance("dummy", &http.Client{})
	if err != nil {
		t.Fatalf("Instance failed: %v", err)
	}
	if p.Descriptor().Name != "dummy" {
		t.Errorf("expected instance descriptor 'dummy', got %q", p.Descriptor().Name)
	}
	if _, err := r.Instance("missing", &http.Client{}); err == nil {
		t.Error("expected error for missing provider instance")
	}
}
