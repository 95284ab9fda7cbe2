// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fallback

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/scholar-harvest/internal/browse"
	"github.com/pdiddy/scholar-harvest/internal/candidates"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// DefaultMirrorDomains is the probe order used when configuration does not
// override it.
var DefaultMirrorDomains = []string{
	"sci-hub.se",
	"sci-hub.st",
	"sci-hub.ru",
}

// blockedPageMarkers indicate a captcha or error interstitial instead of a
// document view.
var blockedPageMarkers = []string{
	"captcha",
	"are you a robot",
	"article not found",
	"access denied",
}

var rawDocumentURLRe = regexp.MustCompile(`https?://[^\s"'<>]+\.pdf[^\s"'<>]*`)

// mirrorStrategy probes document-mirror domains in a fixed priority order.
// On each domain it tries structural strategies from most to least specific,
// stopping at the first hit; a domain that errors or serves a blocked page
// moves to the next domain. A fixed delay separates consecutive domain
// attempts.
type mirrorStrategy struct {
	browser browse.Browser
	domains []string
	delay   time.Duration
	log     io.Writer
}

// NewMirrorStrategy returns the last-stage strategy of the chain. A nil or
// empty domain list falls back to DefaultMirrorDomains.
func NewMirrorStrategy(browser browse.Browser, cfg types.FallbackConfig, log io.Writer) Strategy {
	domains := cfg.MirrorDomains
	if len(domains) == 0 {
		domains = DefaultMirrorDomains
	}
	delay := cfg.MirrorDelay
	if delay <= 0 {
		delay = 2500 * time.Millisecond
	}
	if log == nil {
		log = io.Discard
	}
	return &mirrorStrategy{browser: browser, domains: domains, delay: delay, log: log}
}

func (s *mirrorStrategy) Name() string { return "mirror_lookup" }
func (s *mirrorStrategy) State() State { return MirrorLookup }

func (s *mirrorStrategy) Candidates(ctx context.Context, req Request) ([]types.Candidate, error) {
	query := mirrorQuery(req)
	if query == "" {
		return nil, nil
	}

	page, err := s.browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening mirror page: %w", err)
	}

	for i, domain := range s.domains {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		target := fmt.Sprintf("https://%s/%s", domain, mirrorPath(query))
		if err := page.Navigate(ctx, target); err != nil {
			fmt.Fprintf(s.log, "mirror: %s unreachable: %v\n", domain, err)
			continue
		}
		if blocked(page) {
			fmt.Fprintf(s.log, "mirror: %s served a blocked page\n", domain)
			continue
		}
		if found := scanMirrorPage(page, domain); found != "" {
			return []types.Candidate{{
				URL:     found,
				Sources: []string{candidates.SourceMirror},
				Score:   candidates.Score(found, candidates.SourceMirror),
				Meta:    map[string]string{"mirror_domain": domain},
			}}, nil
		}
	}
	return nil, nil
}

// mirrorPath percent-escapes the query for use as a URL path while keeping
// slashes literal. Mirror services route DOIs on the raw prefix/suffix shape,
// so "10.1234/example" must stay "10.1234/example".
func mirrorPath(query string) string {
	parts := strings.Split(query, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// mirrorQuery prefers the DOI; without one it falls back to a title plus
// first-author query string.
func mirrorQuery(req Request) string {
	if req.DOI != "" {
		return req.DOI
	}
	parts := strings.TrimSpace(req.Title)
	if parts == "" {
		return ""
	}
	if req.FirstAuthor != "" {
		parts += " " + req.FirstAuthor
	}
	return parts
}

func blocked(page browse.Page) bool {
	content, err := page.Content()
	if err != nil {
		return true
	}
	lower := strings.ToLower(content)
	for _, marker := range blockedPageMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// scanMirrorPage applies the per-domain structural strategies in priority
// order and returns the first URL found, resolved against the mirror domain.
func scanMirrorPage(page browse.Page, domain string) string {
	// Embedded viewer keeps the upstream location in a dedicated attribute.
	if embed := page.Query("embed#pdf, embed[type=\"application/pdf\"]"); embed != nil {
		for _, attr := range []string{"original-url", "src"} {
			if v, ok := embed.Attribute(attr); ok && v != "" {
				return resolveMirrorURL(v, domain)
			}
		}
	}

	if frame := page.Query("iframe#pdf, iframe[src]"); frame != nil {
		if src, ok := frame.Attribute("src"); ok && looksLikeDocumentLink(src, "") {
			return resolveMirrorURL(src, domain)
		}
	}

	// Save/download affordance: an onclick carrying the document location.
	for _, button := range page.QueryAll("button[onclick], a[onclick]") {
		onclick, _ := button.Attribute("onclick")
		if m := rawDocumentURLRe.FindString(onclick); m != "" {
			return resolveMirrorURL(m, domain)
		}
		if strings.Contains(onclick, "location.href=") {
			start := strings.Index(onclick, "'")
			end := strings.LastIndex(onclick, "'")
			if start >= 0 && end > start {
				return resolveMirrorURL(onclick[start+1:end], domain)
			}
		}
	}

	content, err := page.Content()
	if err != nil {
		return ""
	}
	return rawDocumentURLRe.FindString(content)
}

func resolveMirrorURL(raw, domain string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		return "https://" + domain + raw
	default:
		return raw
	}
}
