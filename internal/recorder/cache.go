package recorder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// CacheDirEnv overrides the default raw response cache directory.
	CacheDirEnv = "REVIEWS_CACHE_DIR"

	// DefaultCacheDir is where raw responses are kept for inspection.
	DefaultCacheDir = "testdata/responses"
)

// CachedResponse is the raw last response of a recorded run, kept beside
// the mock fixtures so broken captures can be inspected by hand.
type CachedResponse struct {
	URL          string            `json:"url"`
	StatusCode   int               `json:"status_code"`
	Headers      map[string]string `json:"headers"`
	Body         string            `json:"-"`
	BodyFile     string            `json:"body_file"`
	IsValid      bool              `json:"is_valid"`
	ReviewsCount int               `json:"reviews_count"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// ResponseCache stores one directory per provider test case, holding a
// meta.json next to the response body in its own file. The body extension
// follows the response content type so editors highlight it sensibly.
type ResponseCache struct {
	base string
}

// NewResponseCache resolves the base directory from base, then CacheDirEnv,
// then DefaultCacheDir.
func NewResponseCache(base string) *ResponseCache {
	if base == "" {
		base = os.Getenv(CacheDirEnv)
	}
	if base == "" {
		base = DefaultCacheDir
	}
	return &ResponseCache{base: base}
}

// Dir returns the cache base directory.
func (c *ResponseCache) Dir() string { return c.base }

func (c *ResponseCache) caseDir(providerName, testCase string) string {
	return filepath.Join(c.base, sanitizeName(providerName), sanitizeName(testCase))
}

func bodyExt(headers map[string]string) string {
	contentType := strings.ToLower(headers["Content-Type"])
	switch {
	case strings.Contains(contentType, "json"):
		return ".json"
	case strings.Contains(contentType, "html"):
		return ".html"
	default:
		return ".txt"
	}
}

// Save writes the response metadata and body for one test case,
// overwriting any previous capture.
func (c *ResponseCache) Save(providerName, testCase string, resp *CachedResponse) error {
	dir := c.caseDir(providerName, testCase)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	resp.BodyFile = "body" + bodyExt(resp.Headers)
	if err := os.WriteFile(filepath.Join(dir, resp.BodyFile), []byte(resp.Body), 0o644); err != nil {
		return err
	}

	meta, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "meta.json"), meta, 0o644)
}

// Load reads a cached response back, returning nil without error when the
// test case has not been cached.
func (c *ResponseCache) Load(providerName, testCase string) (*CachedResponse, error) {
	dir := c.caseDir(providerName, testCase)
	meta, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp CachedResponse
	if err := json.Unmarshal(meta, &resp); err != nil {
		return nil, err
	}
	if resp.BodyFile != "" {
		body, err := os.ReadFile(filepath.Join(dir, resp.BodyFile))
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		resp.Body = string(body)
	}
	return &resp, nil
}

// TestCases lists the cached test case names for a provider, sorted.
func (c *ResponseCache) TestCases(providerName string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(c.base, sanitizeName(providerName)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cases []string
	for _, entry := range entries {
		if entry.IsDir() {
			cases = append(cases, entry.Name())
		}
	}
	sort.Strings(cases)
	return cases, nil
}

// ClearProvider removes every cached response for a provider.
func (c *ResponseCache) ClearProvider(providerName string) error {
	return os.RemoveAll(filepath.Join(c.base, sanitizeName(providerName)))
}
