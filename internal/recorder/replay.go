package recorder

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/law-makers/reviews/internal/provider"
)

// ReplayTransport serves previously captured exchanges instead of touching
// the network. Responses for the same method and URL are served in capture
// order; once exhausted the last one repeats, so retry loops replay cleanly.
type ReplayTransport struct {
	queues map[string][]Exchange
}

// NewReplayTransport builds a transport over the given exchanges.
func NewReplayTransport(exchanges []Exchange) *ReplayTransport {
	queues := make(map[string][]Exchange)
	for _, ex := range exchanges {
		key := replayKey(ex.Method, ex.URL)
		queues[key] = append(queues[key], ex)
	}
	return &ReplayTransport{queues: queues}
}

func replayKey(method, url string) string {
	if method == "" {
		method = http.MethodGet
	}
	return strings.ToUpper(method) + " " + url
}

// RoundTrip implements http.RoundTripper. A request with no recorded
// response fails the same way an unreachable host would.
func (t *ReplayTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	key := replayKey(req.Method, req.URL.String())
	queue := t.queues[key]
	if len(queue) == 0 {
		return nil, provider.NewError(provider.KindNetworkError,
			fmt.Sprintf("no recorded response for %s", key), nil)
	}

	ex := queue[0]
	if len(queue) > 1 {
		t.queues[key] = queue[1:]
	}

	header := make(http.Header, len(ex.Headers))
	for key, value := range ex.Headers {
		header.Set(key, value)
	}

	return &http.Response{
		Status:     fmt.Sprintf("%d %s", ex.StatusCode, http.StatusText(ex.StatusCode)),
		StatusCode: ex.StatusCode,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(ex.Body)),
		Request:    req,
	}, nil
}
