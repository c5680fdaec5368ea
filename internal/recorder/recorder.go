package recorder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/internal/ratelimit"
	"github.com/law-makers/reviews/pkg/models"
)

// RecordingResult is the outcome of recording or replaying one URL.
type RecordingResult struct {
	URL          string
	TestCase     string
	Success      bool
	ReviewsCount int
	StatusCode   int
	ErrorMessage string
}

// Recorder drives providers against their declared test URLs, persisting
// each run as a mock record plus a raw response cache entry, and replays
// persisted runs to test providers offline.
type Recorder struct {
	mocks   *MockStore
	cache   *ResponseCache
	limiter ratelimit.RateLimiter
	timeout time.Duration
	log     zerolog.Logger
}

// NewRecorder wires a recorder over the given stores. A zero timeout
// defaults to 30 seconds.
func NewRecorder(mocks *MockStore, cache *ResponseCache, timeout time.Duration, log zerolog.Logger) *Recorder {
	if mocks == nil {
		mocks = NewMockStore("", nil)
	}
	if cache == nil {
		cache = NewResponseCache("")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Recorder{mocks: mocks, cache: cache, timeout: timeout, log: log}
}

// SetRateLimiter throttles live recording runs per host. Replay is never
// limited since it stays off the network.
func (r *Recorder) SetRateLimiter(limiter ratelimit.RateLimiter) {
	r.limiter = limiter
}

func (r *Recorder) waitTurn(ctx context.Context, url string) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx, url)
}

func validCase(i int) string   { return fmt.Sprintf("test_url_%03d", i) }
func invalidCase(i int) string { return fmt.Sprintf("invalid_url_%03d", i) }

// RecordProvider runs a provider live against every declared URL and
// persists the results. Runs that fail validation are reported and NOT
// persisted, so a flaky capture never poisons the fixtures. Invalid URLs
// are only recorded once all test URLs recorded cleanly.
func (r *Recorder) RecordProvider(ctx context.Context, factory provider.Factory, reRecord bool) (successful, failed []RecordingResult) {
	name := factory.Descriptor.Name
	if reRecord {
		if removed, err := r.mocks.ClearProvider(name); err != nil {
			r.log.Warn().Err(err).Str("provider", name).Msg("could not clear mocks")
		} else if removed > 0 {
			r.log.Info().Str("provider", name).Int("removed", removed).Msg("cleared mocks")
		}
		if err := r.cache.ClearProvider(name); err != nil {
			r.log.Warn().Err(err).Str("provider", name).Msg("could not clear response cache")
		}
	}

	for i, url := range factory.Descriptor.TestURLs {
		result := r.recordTestURL(ctx, factory, url, i)
		if result.Success {
			successful = append(successful, result)
		} else {
			failed = append(failed, result)
		}
	}
	if len(failed) > 0 {
		return successful, failed
	}

	for i, url := range factory.Descriptor.InvalidURLs {
		result := r.recordInvalidURL(ctx, factory, url, i)
		if result.Success {
			successful = append(successful, result)
		} else {
			failed = append(failed, result)
		}
	}
	return successful, failed
}

func (r *Recorder) recordTestURL(ctx context.Context, factory provider.Factory, url string, index int) RecordingResult {
	name := factory.Descriptor.Name
	result := RecordingResult{URL: url, TestCase: validCase(index)}

	if err := r.waitTurn(ctx, url); err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	capture := NewCaptureTransport(nil)
	p, err := factory.New(&http.Client{Transport: capture, Timeout: r.timeout})
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	list, err := p.GetReviews(ctx, url)
	exchanges := capture.Exchanges()
	if len(exchanges) > 0 {
		result.StatusCode = exchanges[len(exchanges)-1].StatusCode
	}
	if err != nil {
		result.ErrorMessage = err.Error()
		r.cacheRun(name, result, exchanges, false, 0, err.Error())
		return result
	}

	ok, reason := provider.ValidateReviews(list.Reviews)
	result.ReviewsCount = list.Count()
	if !ok {
		result.ErrorMessage = reason
		r.cacheRun(name, result, exchanges, false, list.Count(), reason)
		return result
	}

	record := &MockRecord{URL: url, Reviews: representations(list.Reviews), CapturedData: exchanges}
	if _, err := r.mocks.Save(name, URLValid, index, 0, record); err != nil {
		result.ErrorMessage = fmt.Sprintf("saving mock: %v", err)
		return result
	}
	r.cacheRun(name, result, exchanges, true, list.Count(), "")

	result.Success = true
	r.log.Info().Str("provider", name).Str("url", url).
		Int("reviews", result.ReviewsCount).Msg("recorded test url")
	return result
}

// recordInvalidURL records a URL that the provider is expected to reject.
// A fetch that succeeds is a failure here; the fixture captures the error
// so replay can confirm the rejection without network access.
func (r *Recorder) recordInvalidURL(ctx context.Context, factory provider.Factory, url string, index int) RecordingResult {
	name := factory.Descriptor.Name
	result := RecordingResult{URL: url, TestCase: invalidCase(index)}

	if err := r.waitTurn(ctx, url); err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	capture := NewCaptureTransport(nil)
	p, err := factory.New(&http.Client{Transport: capture, Timeout: r.timeout})
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	_, err = p.GetReviews(ctx, url)
	exchanges := capture.Exchanges()
	if len(exchanges) > 0 {
		result.StatusCode = exchanges[len(exchanges)-1].StatusCode
	}
	if err == nil {
		result.ErrorMessage = "expected failure for invalid URL but fetch succeeded"
		return result
	}
	if !expectedInvalidError(err) {
		result.ErrorMessage = fmt.Sprintf("unexpected error kind %s: %v", provider.KindOf(err), err)
		return result
	}

	record := &MockRecord{URL: url, CapturedData: exchanges}
	if _, err := r.mocks.Save(name, URLInvalid, index, 0, record); err != nil {
		result.ErrorMessage = fmt.Sprintf("saving mock: %v", err)
		return result
	}

	result.Success = true
	result.ErrorMessage = err.Error()
	r.log.Info().Str("provider", name).Str("url", url).Msg("recorded invalid url")
	return result
}

// TestProvider replays persisted fixtures for every declared URL. Missing
// fixtures, or all of them under reRecord, are recorded live first.
func (r *Recorder) TestProvider(ctx context.Context, factory provider.Factory, reRecord bool) []RecordingResult {
	name := factory.Descriptor.Name
	var results []RecordingResult

	for i, url := range factory.Descriptor.TestURLs {
		record, err := r.mocks.Load(name, URLValid, i, 0)
		if err != nil {
			results = append(results, RecordingResult{
				URL: url, TestCase: validCase(i), ErrorMessage: err.Error(),
			})
			continue
		}
		if reRecord || record == nil {
			results = append(results, r.recordTestURL(ctx, factory, url, i))
			continue
		}
		results = append(results, r.replayTestURL(ctx, factory, url, i, record))
	}

	for i, url := range factory.Descriptor.InvalidURLs {
		record, err := r.mocks.Load(name, URLInvalid, i, 0)
		if err != nil {
			results = append(results, RecordingResult{
				URL: url, TestCase: invalidCase(i), ErrorMessage: err.Error(),
			})
			continue
		}
		if reRecord || record == nil {
			results = append(results, r.recordInvalidURL(ctx, factory, url, i))
			continue
		}
		results = append(results, r.replayInvalidURL(ctx, factory, url, i, record))
	}
	return results
}

func (r *Recorder) replayTestURL(ctx context.Context, factory provider.Factory, url string, index int, record *MockRecord) RecordingResult {
	result := RecordingResult{URL: url, TestCase: validCase(index)}

	p, err := factory.New(replayClient(record))
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}
	list, err := p.GetReviews(ctx, url)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	result.ReviewsCount = list.Count()
	if ok, reason := provider.ValidateReviews(list.Reviews); !ok {
		result.ErrorMessage = reason
		return result
	}
	if list.Count() != len(record.Reviews) {
		result.ErrorMessage = fmt.Sprintf("replay produced %d reviews, recording had %d",
			list.Count(), len(record.Reviews))
		return result
	}

	result.Success = true
	return result
}

func (r *Recorder) replayInvalidURL(ctx context.Context, factory provider.Factory, url string, index int, record *MockRecord) RecordingResult {
	result := RecordingResult{URL: url, TestCase: invalidCase(index)}

	p, err := factory.New(replayClient(record))
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}
	_, err = p.GetReviews(ctx, url)
	if err == nil {
		result.ErrorMessage = "expected failure for invalid URL but fetch succeeded"
		return result
	}
	if !expectedInvalidError(err) {
		result.ErrorMessage = fmt.Sprintf("unexpected error kind %s: %v", provider.KindOf(err), err)
		return result
	}

	result.Success = true
	result.ErrorMessage = err.Error()
	return result
}

// expectedInvalidError reports whether an error is an acceptable outcome
// for a deliberately invalid URL: either outright rejection of the URL or
// a classified parse failure from whatever the server returned.
func expectedInvalidError(err error) bool {
	return provider.IsKind(err, provider.KindInvalidURL) ||
		provider.IsKind(err, provider.KindParseError) ||
		provider.IsKind(err, provider.KindNetworkError)
}

func replayClient(record *MockRecord) *http.Client {
	return &http.Client{Transport: NewReplayTransport(record.CapturedData)}
}

func (r *Recorder) cacheRun(name string, result RecordingResult, exchanges []Exchange, valid bool, count int, errMsg string) {
	if len(exchanges) == 0 {
		return
	}
	last := exchanges[len(exchanges)-1]
	cached := &CachedResponse{
		URL:          last.URL,
		StatusCode:   last.StatusCode,
		Headers:      last.Headers,
		Body:         last.Body,
		IsValid:      valid,
		ReviewsCount: count,
		ErrorMessage: errMsg,
	}
	if err := r.cache.Save(name, result.TestCase, cached); err != nil {
		r.log.Warn().Err(err).Str("provider", name).
			Str("case", result.TestCase).Msg("could not cache response")
	}
}

func representations(reviews []models.Review) []map[string]any {
	reps := make([]map[string]any, 0, len(reviews))
	for _, review := range reviews {
		reps = append(reps, review.ToRepresentation())
	}
	return reps
}
