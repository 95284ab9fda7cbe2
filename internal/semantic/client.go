// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package semantic queries the Semantic Scholar Graph API for author
// identities and their paper listings. All calls are paced by a client-side
// rate limiter and retried on rate-limit responses with a fixed backoff
// schedule.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/scholar-harvest/internal/httputil"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// semanticAPIBase is the Semantic Scholar Graph API root. Declared as a var
// so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

const (
	authorSearchFields = "authorId,name,affiliations,paperCount,citationCount"
	authorPaperFields  = "title,year,venue,citationCount,externalIds,openAccessPdf"
)

// Author is an identity returned by author search.
type Author struct {
	AuthorID      string   `json:"authorId"`
	Name          string   `json:"name"`
	Affiliations  []string `json:"affiliations"`
	PaperCount    int      `json:"paperCount"`
	CitationCount int      `json:"citationCount"`
}

// Paper is one listing entry for an author.
type Paper struct {
	PaperID       string `json:"paperId"`
	Title         string `json:"title"`
	Year          int    `json:"year"`
	Venue         string `json:"venue"`
	CitationCount int    `json:"citationCount"`
	ExternalIDs   struct {
		DOI   string `json:"DOI"`
		ArXiv string `json:"ArXiv"`
	} `json:"externalIds"`
	OpenAccessPDF *struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
}

// Client is a rate-limited Semantic Scholar API client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	userAgent  string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client from API settings. RequestsPerSecond bounds the
// sustained call rate; bursts of one.
func NewClient(cfg types.APIConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchAuthors returns identities matching a free-text author query, in the
// service's relevance order.
func (c *Client) SearchAuthors(ctx context.Context, query string) ([]Author, error) {
	if query == "" {
		return nil, fmt.Errorf("empty author query")
	}
	params := url.Values{
		"query":  {query},
		"fields": {authorSearchFields},
	}
	var payload struct {
		Data []Author `json:"data"`
	}
	if err := c.get(ctx, "/author/search?"+params.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// AuthorPapers returns up to limit papers for an author ID, sorted by
// citation count descending so the most cited work resolves first.
func (c *Client) AuthorPapers(ctx context.Context, authorID string, limit int) ([]Paper, error) {
	if authorID == "" {
		return nil, fmt.Errorf("empty author ID")
	}
	if limit <= 0 {
		limit = 100
	}
	params := url.Values{
		"fields": {authorPaperFields},
		"limit":  {fmt.Sprintf("%d", limit)},
	}
	var payload struct {
		Data []Paper `json:"data"`
	}
	path := fmt.Sprintf("/author/%s/papers?%s", url.PathEscape(authorID), params.Encode())
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	papers := payload.Data
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].CitationCount > papers[j].CitationCount
	})
	return papers, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := httputil.DoWithBackoff(ctx, c.httpClient, req)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// Records converts API paper listings into PaperRecord drafts, carrying the
// open-access PDF URL as the download link when the service exposes one.
func Records(papers []Paper) []types.PaperRecord {
	out := make([]types.PaperRecord, 0, len(papers))
	for _, p := range papers {
		rec := types.PaperRecord{
			Title:         p.Title,
			Publication:   p.Venue,
			CitationCount: p.CitationCount,
			DOI:           p.ExternalIDs.DOI,
		}
		if p.Year > 0 {
			rec.Year = fmt.Sprintf("%d", p.Year)
		}
		if p.OpenAccessPDF != nil {
			rec.DownloadLink = p.OpenAccessPDF.URL
		}
		out = append(out, rec)
	}
	return out
}
