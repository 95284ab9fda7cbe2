// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BackoffSchedule is the fixed wait schedule applied on HTTP 429 responses.
// Tests override this to avoid real sleeps.
var BackoffSchedule = []time.Duration{10 * time.Second, 30 * time.Second, 60 * time.Second}

// ErrRateLimited is returned after the backoff schedule is exhausted while the
// remote keeps answering 429.
var ErrRateLimited = errors.New("rate limited: backoff schedule exhausted")

// DoWithBackoff executes an HTTP request, retrying on HTTP 429 (Too Many
// Requests) with the fixed BackoffSchedule: one retry per schedule entry,
// sleeping that entry's duration first. Any other error or status returns
// immediately without retry; a success is never retried. After exhausting the
// schedule the last 429 is drained and ErrRateLimited is returned; rate-limit
// exhaustion is terminal for the calling resolution step.
//
// If the context is cancelled during a backoff wait, ctx.Err() is returned.
func DoWithBackoff(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Drain and close the body before retrying or giving up.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if attempt >= len(BackoffSchedule) {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, ErrRateLimited)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(BackoffSchedule[attempt]):
		}
	}
}
