// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linkcheck probes candidate document URLs for liveness. A URL is
// considered live when a lightweight HEAD request succeeds and either the
// response content type or the URL itself indicates a document. Results are
// memoized per URL for the lifetime of a Validator.
package linkcheck

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// batchSize is the number of candidates probed concurrently by FirstLive
// before falling back to sequential checks.
const batchSize = 3

// documentContentTypes are substrings accepted in a Content-Type header.
var documentContentTypes = []string{
	"application/pdf",
	"application/octet-stream",
	"application/x-pdf",
}

// Validator performs memoized liveness probes against remote URLs.
type Validator struct {
	client         *http.Client
	insecureClient *http.Client
	userAgent      string

	mu    sync.Mutex
	cache map[string]bool
}

// NewValidator builds a Validator from HTTP settings. Redirects are followed
// by both clients; the insecure client is used only after a verified attempt
// fails on a certificate error.
func NewValidator(cfg types.HTTPConfig) *Validator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	insecureTransport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return &Validator{
		client:         &http.Client{Timeout: timeout},
		insecureClient: &http.Client{Timeout: timeout, Transport: insecureTransport},
		userAgent:      cfg.UserAgent,
		cache:          make(map[string]bool),
	}
}

// IsLive reports whether url points at a reachable document. A timeout or
// network error is cached as false; the same URL is never re-probed within
// the lifetime of the Validator.
func (v *Validator) IsLive(ctx context.Context, url string) bool {
	v.mu.Lock()
	if live, ok := v.cache[url]; ok {
		v.mu.Unlock()
		return live
	}
	v.mu.Unlock()

	live := v.probe(ctx, url)

	v.mu.Lock()
	v.cache[url] = live
	v.mu.Unlock()
	return live
}

func (v *Validator) probe(ctx context.Context, url string) bool {
	resp, err := v.head(ctx, v.client, url)
	if err != nil {
		// Retry without verification only for certificate failures. A
		// connection refusal or timeout stays a failure.
		if isCertificateError(err) {
			resp, err = v.head(ctx, v.insecureClient, url)
		}
		if err != nil {
			return false
		}
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		return false
	}
	return looksLikeDocument(resp.Header.Get("Content-Type"), finalURL(resp, url))
}

func (v *Validator) head(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}
	return client.Do(req)
}

// FirstLive probes urls in order and returns the first live one. The first
// few candidates are checked concurrently with the earliest-listed success
// winning; the remainder are checked sequentially only if the concurrent
// batch produces nothing.
func (v *Validator) FirstLive(ctx context.Context, urls []string) (string, bool) {
	if len(urls) == 0 {
		return "", false
	}

	n := len(urls)
	if n > batchSize {
		n = batchSize
	}

	results := make([]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = v.IsLive(ctx, urls[i])
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if results[i] {
			return urls[i], true
		}
	}

	for _, url := range urls[n:] {
		if ctx.Err() != nil {
			return "", false
		}
		if v.IsLive(ctx, url) {
			return url, true
		}
	}
	return "", false
}

// finalURL returns the URL after redirects when available.
func finalURL(resp *http.Response, fallback string) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return fallback
}

func looksLikeDocument(contentType, url string) bool {
	ct := strings.ToLower(contentType)
	for _, want := range documentContentTypes {
		if strings.Contains(ct, want) {
			return true
		}
	}
	lower := strings.ToLower(url)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	return strings.HasSuffix(lower, ".pdf")
}

func isCertificateError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var unknownAuth x509.UnknownAuthorityError
	if errors.As(err, &unknownAuth) {
		return true
	}
	var hostErr x509.HostnameError
	return errors.As(err, &hostErr)
}
