package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/reviews/internal/provider"
	"github.com/law-makers/reviews/internal/retry"
)

// fetch performs a GET with retries on transient failures and classifies
// the terminal error: transport problems are network errors, non-2xx
// statuses are parse failures (the address resolved, the content is
// unusable).
func fetch(ctx context.Context, client *http.Client, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, provider.NewError(provider.KindInvalidURL, fmt.Sprintf("cannot build request for %q", url), err)
	}
	req.Header.Set("Accept", accept)

	var body []byte
	var status int
	err = retry.WithRetry(ctx, retry.DefaultConfig(), func() error {
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return retry.NewHTTPError(resp.StatusCode, resp.Status, "")
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		var httpErr retry.HTTPError
		if errors.As(err, &httpErr) {
			return nil, provider.NewError(provider.KindParseError,
				fmt.Sprintf("HTTP %d from %q", httpErr.StatusCode, url), nil)
		}
		return nil, provider.NewError(provider.KindNetworkError, fmt.Sprintf("request to %q failed", url), err)
	}

	log.Debug().Str("url", url).Int("status", status).Int("bytes", len(body)).Msg("Fetched")
	return body, nil
}
