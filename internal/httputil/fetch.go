// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the single-attempt HTTP GET used by the lookup
// client.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps how much of a response body Fetch reads. PUG REST
// property responses are a few hundred bytes.
var MaxBodyBytes int64 = 1 << 20

// StatusError reports a response whose status code was not 2xx. Body holds
// the (capped) response body so callers can inspect service fault records.
type StatusError struct {
	Code   int
	Status string
	URL    string
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %s for url: %s", e.Status, e.URL)
}

// Fetch performs one GET of url and returns the response body. It sets
// userAgent and accept headers when non-empty. Transport failures are
// returned as-is; a non-2xx status is returned as *StatusError. There is no
// retry.
func Fetch(ctx context.Context, client *http.Client, url, userAgent, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			URL:    url,
			Body:   body,
		}
	}
	return body, nil
}
