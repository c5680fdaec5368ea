package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/pkg/models"
)

// jsonListProvider fetches a URL with its injected client and decodes the
// body as a JSON array of review representations.
type jsonListProvider struct {
	desc   provider.Descriptor
	client *http.Client
}

func (p *jsonListProvider) Descriptor() provider.Descriptor { return p.desc }

func (p *jsonListProvider) GetReviews(ctx context.Context, url string) (*models.ReviewList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, provider.NewError(provider.KindInvalidURL, "bad url", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, provider.NewError(provider.KindNetworkError, "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, provider.NewError(provider.KindParseError,
			fmt.Sprintf("HTTP %d from %q", resp.StatusCode, url), nil)
	}
	var items []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, provider.NewError(provider.KindParseError, "cannot parse JSON", err)
	}
	list := &models.ReviewList{}
	for _, item := range items {
		review, err := models.ReviewFromRepresentation(item)
		if err != nil {
			return nil, provider.NewError(provider.KindParseError, "bad review item", err)
		}
		list.Reviews = append(list.Reviews, review)
	}
	return list, nil
}

func listFactory(name string, testURLs, invalidURLs []string) provider.Factory {
	desc := provider.Descriptor{
		Name:        name,
		URLPatterns: provider.PatternList{`https?://.*`},
		TestURLs:    testURLs,
		InvalidURLs: invalidURLs,
	}
	return provider.Factory{
		Descriptor: desc,
		New: func(client *http.Client) (provider.Provider, error) {
			return &jsonListProvider{desc: desc, client: client}, nil
		},
	}
}

func testRecorder(t *testing.T) *Recorder {
	t.Helper()
	mocks := NewMockStore(filepath.Join(t.TempDir(), "mocks"), nil)
	cache := NewResponseCache(filepath.Join(t.TempDir(), "responses"))
	return NewRecorder(mocks, cache, 0, zerolog.Nop())
}

func reviewsHandler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"rating": 5, "text": "Great", "created_at": "2021-06-01T09:00:00Z"},
			{"rating": 3.5, "text": "Okay", "created_at": "2021-06-02T09:00:00Z"}
		]`)
	})
	return mux
}

func TestRecordThenReplay(t *testing.T) {
	server := httptest.NewServer(reviewsHandler(t))
	rec := testRecorder(t)
	factory := listFactory("acme", []string{server.URL + "/reviews"}, []string{server.URL + "/missing"})

	successful, failed := rec.RecordProvider(context.Background(), factory, false)
	if len(failed) != 0 {
		t.Fatalf("recording failed: %+v", failed)
	}
	if len(successful) != 2 {
		t.Fatalf("got %d successful results, want 2", len(successful))
	}
	if successful[0].ReviewsCount != 2 {
		t.Errorf("reviews count = %d, want 2", successful[0].ReviewsCount)
	}

	record, err := rec.mocks.Load("acme", URLValid, 0, 0)
	if err != nil || record == nil {
		t.Fatalf("loading mock: record=%v err=%v", record, err)
	}
	if len(record.CapturedData) != 1 {
		t.Fatalf("captured %d exchanges, want 1", len(record.CapturedData))
	}
	if len(record.Reviews) != 2 {
		t.Fatalf("recorded %d reviews, want 2", len(record.Reviews))
	}

	// Replay must reproduce the recorded collection with the network gone.
	server.Close()
	results := rec.TestProvider(context.Background(), factory, false)
	if len(results) != 2 {
		t.Fatalf("got %d replay results, want 2", len(results))
	}
	for _, result := range results {
		if !result.Success {
			t.Errorf("replay %s failed: %s", result.TestCase, result.ErrorMessage)
		}
	}
	if results[0].ReviewsCount != 2 {
		t.Errorf("replay reviews count = %d, want 2", results[0].ReviewsCount)
	}

	p, err := factory.New(replayClient(record))
	if err != nil {
		t.Fatal(err)
	}
	list, err := p.GetReviews(context.Background(), record.URL)
	if err != nil {
		t.Fatalf("replay fetch: %v", err)
	}
	wantReps := []map[string]any{
		{"rating": 5.0, "text": "Great", "created_at": "2021-06-01T09:00:00Z",
			"pros": nil, "cons": nil, "summary": nil},
		{"rating": 3.5, "text": "Okay", "created_at": "2021-06-02T09:00:00Z",
			"pros": nil, "cons": nil, "summary": nil},
	}
	if diff := cmp.Diff(wantReps, representations(list.Reviews)); diff != "" {
		t.Errorf("replayed reviews differ from recording (-want +got):\n%s", diff)
	}
}

func TestRecordInvalidURLThatSucceeds(t *testing.T) {
	server := httptest.NewServer(reviewsHandler(t))
	defer server.Close()
	rec := testRecorder(t)
	// The "invalid" URL serves perfectly good reviews, which is a defect
	// in the provider's declaration and must be reported as a failure.
	factory := listFactory("acme", nil, []string{server.URL + "/reviews"})

	successful, failed := rec.RecordProvider(context.Background(), factory, false)
	if len(successful) != 0 || len(failed) != 1 {
		t.Fatalf("got %d successful, %d failed, want 0 and 1", len(successful), len(failed))
	}
	if failed[0].ErrorMessage == "" {
		t.Error("failure has no error message")
	}
	record, err := rec.mocks.Load("acme", URLInvalid, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if record != nil {
		t.Error("failed run was persisted as a mock")
	}
}

func TestRecordInvalidReviewsNotPersisted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"text": "no rating or date"}]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rec := testRecorder(t)
	factory := listFactory("acme", []string{server.URL + "/reviews"}, nil)

	_, failed := rec.RecordProvider(context.Background(), factory, false)
	if len(failed) != 1 {
		t.Fatalf("got %d failed results, want 1", len(failed))
	}
	if failed[0].ErrorMessage != "Review validation failed" {
		t.Errorf("error message = %q, want %q", failed[0].ErrorMessage, "Review validation failed")
	}
	record, err := rec.mocks.Load("acme", URLValid, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if record != nil {
		t.Error("invalid run was persisted as a mock")
	}

	// The raw response still lands in the cache for inspection.
	cached, err := rec.cache.Load("acme", "test_url_000")
	if err != nil || cached == nil {
		t.Fatalf("loading cached response: cached=%v err=%v", cached, err)
	}
	if cached.IsValid {
		t.Error("cached response marked valid")
	}
}

func TestRecordSkipsInvalidURLsAfterTestURLFailure(t *testing.T) {
	rec := testRecorder(t)
	// The test URL points at a closed server, so recording it fails and
	// the invalid URLs must not be attempted at all.
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	factory := listFactory("acme",
		[]string{dead.URL + "/reviews"},
		[]string{dead.URL + "/missing"})

	successful, failed := rec.RecordProvider(context.Background(), factory, false)
	if len(successful) != 0 {
		t.Errorf("got %d successful results, want 0", len(successful))
	}
	if len(failed) != 1 {
		t.Fatalf("got %d failed results, want 1", len(failed))
	}
	if failed[0].TestCase != "test_url_000" {
		t.Errorf("failed case = %q, want test_url_000", failed[0].TestCase)
	}
}

func TestTestProviderRecordsMissingFixtures(t *testing.T) {
	server := httptest.NewServer(reviewsHandler(t))
	defer server.Close()
	rec := testRecorder(t)
	factory := listFactory("acme", []string{server.URL + "/reviews"}, nil)

	results := rec.TestProvider(context.Background(), factory, false)
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("first run results: %+v", results)
	}
	record, err := rec.mocks.Load("acme", URLValid, 0, 0)
	if err != nil || record == nil {
		t.Fatalf("fixture not recorded on first test run: record=%v err=%v", record, err)
	}
}

func TestReplayTransportOrderAndExhaustion(t *testing.T) {
	transport := NewReplayTransport([]Exchange{
		{Method: "GET", URL: "http://x.test/a", StatusCode: 500, Body: "first"},
		{Method: "GET", URL: "http://x.test/a", StatusCode: 200, Body: "second"},
	})
	req, _ := http.NewRequest(http.MethodGet, "http://x.test/a", nil)

	want := []int{500, 200, 200}
	for i, status := range want {
		resp, err := transport.RoundTrip(req)
		if err != nil {
			t.Fatalf("round trip %d: %v", i, err)
		}
		if resp.StatusCode != status {
			t.Errorf("round trip %d status = %d, want %d", i, resp.StatusCode, status)
		}
		resp.Body.Close()
	}

	other, _ := http.NewRequest(http.MethodGet, "http://x.test/unknown", nil)
	_, err := transport.RoundTrip(other)
	if !provider.IsKind(err, provider.KindNetworkError) {
		t.Errorf("unknown URL error kind = %v, want %s", provider.KindOf(err), provider.KindNetworkError)
	}
}

func TestCaptureStripsTransferHeaders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "identity")
		fmt.Fprint(w, "<html></html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	capture := NewCaptureTransport(nil)
	client := &http.Client{Transport: capture}
	resp, err := client.Get(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	exchanges := capture.Exchanges()
	if len(exchanges) != 1 {
		t.Fatalf("captured %d exchanges, want 1", len(exchanges))
	}
	ex := exchanges[0]
	if ex.Body != "<html></html>" {
		t.Errorf("body = %q", ex.Body)
	}
	if ex.Headers["Content-Type"] != "text/html" {
		t.Errorf("Content-Type = %q", ex.Headers["Content-Type"])
	}
	for _, header := range strippedHeaders {
		if _, ok := ex.Headers[header]; ok {
			t.Errorf("header %s not stripped", header)
		}
	}
}

func TestMockStoreLayout(t *testing.T) {
	dir := t.TempDir()
	store := NewMockStore(dir, nil)

	record := &MockRecord{URL: "http://x.test/r"}
	if _, err := store.Save("My Shop", URLValid, 1, 0, record); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save("My Shop", URLInvalid, 0, 2, record); err != nil {
		t.Fatal(err)
	}

	for _, file := range []string{"my_shop_1_0.yaml", "my_shop_invalid_0_2.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, "my_shop", file)); err != nil {
			t.Errorf("expected fixture %s: %v", file, err)
		}
	}

	loaded, err := store.Load("My Shop", URLValid, 1, 0)
	if err != nil || loaded == nil {
		t.Fatalf("load: record=%v err=%v", loaded, err)
	}
	if loaded.URL != record.URL {
		t.Errorf("loaded URL = %q, want %q", loaded.URL, record.URL)
	}

	missing, err := store.Load("My Shop", URLValid, 9, 0)
	if err != nil || missing != nil {
		t.Errorf("missing fixture: record=%v err=%v, want nil and nil", missing, err)
	}

	removed, err := store.ClearProvider("My Shop")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("cleared %d fixtures, want 2", removed)
	}
}

func TestResponseCacheRoundTrip(t *testing.T) {
	cache := NewResponseCache(t.TempDir())

	err := cache.Save("acme", "test_url_000", &CachedResponse{
		URL:          "http://x.test/r",
		StatusCode:   200,
		Headers:      map[string]string{"Content-Type": "application/json"},
		Body:         `{"ok": true}`,
		IsValid:      true,
		ReviewsCount: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := cache.Load("acme", "test_url_000")
	if err != nil || loaded == nil {
		t.Fatalf("load: resp=%v err=%v", loaded, err)
	}
	if loaded.BodyFile != "body.json" {
		t.Errorf("body file = %q, want body.json", loaded.BodyFile)
	}
	if loaded.Body != `{"ok": true}` {
		t.Errorf("body = %q", loaded.Body)
	}
	if loaded.ReviewsCount != 3 || !loaded.IsValid {
		t.Errorf("metadata not preserved: %+v", loaded)
	}

	cases, err := cache.TestCases("acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 1 || cases[0] != "test_url_000" {
		t.Errorf("test cases = %v", cases)
	}

	if err := cache.ClearProvider("acme"); err != nil {
		t.Fatal(err)
	}
	gone, err := cache.Load("acme", "test_url_000")
	if err != nil || gone != nil {
		t.Errorf("after clear: resp=%v err=%v, want nil and nil", gone, err)
	}
}

func TestStorageForFormats(t *testing.T) {
	for format, wantExt := range map[string]string{"": ".yaml", "yaml": ".yaml", "json": ".json"} {
		storage, err := StorageFor(format)
		if err != nil {
			t.Fatalf("StorageFor(%q): %v", format, err)
		}
		if storage.Ext() != wantExt {
			t.Errorf("StorageFor(%q).Ext() = %q, want %q", format, storage.Ext(), wantExt)
		}
	}
	if _, err := StorageFor("toml"); err == nil {
		t.Error("unknown format accepted")
	}
}
