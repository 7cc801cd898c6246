package config

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

// retryBaseDelay is the wait before the first retry in DoWithBackoff.
var retryBaseDelay = 100 * time.Millisecond

// DoWithBackoff sends req, retrying transport errors and 5xx responses with
// exponential backoff and jitter. maxRetries is the number of retries after
// the first attempt; a value <= 0 retries until ctx is done.
func DoWithBackoff(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	delay := retryBaseDelay
	var lastErr error

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := client.Do(req.Clone(ctx))
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode >= http.StatusInternalServerError:
			resp.Body.Close()
			lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
		default:
			return resp, nil
		}

		if maxRetries > 0 && attempt >= maxRetries {
			return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
		}

		wait := delay + time.Duration(rand.Float64()*float64(delay)*JITTER_FACTOR)
		if wait > MAX_BACKOFF {
			wait = MAX_BACKOFF
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay = calculateNewBackoffDelay(delay)
	}
}
