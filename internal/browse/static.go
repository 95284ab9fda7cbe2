// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package browse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// StaticBrowser fetches pages over plain HTTP and parses them with goquery.
// It cannot execute scripts or interact with elements; strategies that need
// those degrade through ErrUnsupported.
type StaticBrowser struct {
	client    *http.Client
	userAgent string
}

// NewStaticBrowser builds an HTTP-backed browser from HTTP settings.
func NewStaticBrowser(cfg types.HTTPConfig) *StaticBrowser {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &StaticBrowser{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
	}
}

// NewPage returns an empty page bound to this browser's HTTP client.
func (b *StaticBrowser) NewPage(ctx context.Context) (Page, error) {
	return &StaticPage{fetch: b.fetch}, nil
}

// Close is a no-op for the HTTP backend.
func (b *StaticBrowser) Close() error { return nil }

func (b *StaticBrowser) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	if b.userAgent != "" {
		req.Header.Set("User-Agent", b.userAgent)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}

// StaticPage is a goquery-backed Page. Tests construct one directly from an
// HTML string with NewStaticPage.
type StaticPage struct {
	fetch func(ctx context.Context, url string) (string, error)
	url   string
	doc   *goquery.Document
	raw   string
}

// NewStaticPage parses html into a page pinned at url, with no fetcher. Used
// by tests and by callers that already hold a document body.
func NewStaticPage(url, html string) (*StaticPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &StaticPage{url: url, doc: doc, raw: html}, nil
}

func (p *StaticPage) Navigate(ctx context.Context, url string) error {
	if p.fetch == nil {
		return fmt.Errorf("navigating to %s: %w", url, ErrUnsupported)
	}
	body, err := p.fetch(ctx, url)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", url, err)
	}
	p.url = url
	p.doc = doc
	p.raw = body
	return nil
}

func (p *StaticPage) URL() string { return p.url }

func (p *StaticPage) Content() (string, error) {
	if p.doc == nil {
		return "", fmt.Errorf("page not loaded")
	}
	return p.raw, nil
}

func (p *StaticPage) Query(selector string) Element {
	if p.doc == nil {
		return nil
	}
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return &staticElement{sel: sel}
}

func (p *StaticPage) QueryAll(selector string) []Element {
	if p.doc == nil {
		return nil
	}
	var out []Element
	p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, &staticElement{sel: sel})
	})
	return out
}

// WaitForSelector on a static document cannot wait for anything to render;
// it reports immediately on the parsed tree.
func (p *StaticPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if p.doc == nil || p.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%q: %w", selector, ErrNotFound)
	}
	return nil
}

func (p *StaticPage) Evaluate(expr string) (any, error) {
	return nil, fmt.Errorf("evaluating %q: %w", expr, ErrUnsupported)
}

type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Attribute(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *staticElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

func (e *staticElement) HTML() (string, error) {
	return e.sel.Html()
}

func (e *staticElement) Find(selector string) []Element {
	var out []Element
	e.sel.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, &staticElement{sel: sel})
	})
	return out
}

func (e *staticElement) Click(ctx context.Context) error {
	return ErrUnsupported
}
