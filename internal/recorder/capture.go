// Package recorder captures a provider's real HTTP traffic, persists it as
// replayable fixtures, and replays those fixtures so provider tests run
// deterministically without network access.
package recorder

import (
	"bytes"
	"io"
	"net/http"
)

// strippedHeaders are transfer-specific headers that would be wrong on
// replay, where the body is served verbatim and undecoded.
var strippedHeaders = []string{"Content-Encoding", "Transfer-Encoding", "Content-Length"}

// Exchange is one captured HTTP request/response pair, the replayable unit
// of a mock record.
type Exchange struct {
	Method      string            `json:"method" yaml:"method"`
	URL         string            `json:"url" yaml:"url"`
	RequestBody string            `json:"request_body,omitempty" yaml:"request_body,omitempty"`
	StatusCode  int               `json:"status_code" yaml:"status_code"`
	Headers     map[string]string `json:"headers" yaml:"headers"`
	Body        string            `json:"body" yaml:"body"`
}

// CaptureTransport wraps a RoundTripper and records every exchange passing
// through it. The provider under capture observes normal responses; the
// transport reads bodies fully and hands back an equivalent replacement.
type CaptureTransport struct {
	base      http.RoundTripper
	exchanges []Exchange
}

// NewCaptureTransport records on top of base, or http.DefaultTransport
// when base is nil.
func NewCaptureTransport(base http.RoundTripper) *CaptureTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &CaptureTransport{base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *CaptureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var requestBody string
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		requestBody = string(data)
		req.Body = io.NopCloser(bytes.NewReader(data))
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	headers := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}
	for _, key := range strippedHeaders {
		delete(headers, key)
	}

	exchange := Exchange{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       string(body),
	}
	if req.Method == http.MethodPost {
		exchange.RequestBody = requestBody
	}
	t.exchanges = append(t.exchanges, exchange)

	return resp, nil
}

// Exchanges returns the captured exchanges in request order.
func (t *CaptureTransport) Exchanges() []Exchange {
	return t.exchanges
}
