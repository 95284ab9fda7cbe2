// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/scholar-harvest/internal/candidates"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// unpaywallBase is overridable in tests.
var unpaywallBase = "https://api.unpaywall.org/v2"

// OpenAccessResult is the distilled answer from the open-access service.
type OpenAccessResult struct {
	IsOpenAccess bool
	PDFURL       string
}

// UnpaywallClient queries the Unpaywall REST API for open-access locations
// by DOI. The service requires a contact email on every request.
type UnpaywallClient struct {
	client *http.Client
	email  string
}

// NewUnpaywallClient builds a client; email identifies the caller to the
// service and must be non-empty for real requests.
func NewUnpaywallClient(cfg types.FallbackConfig) *UnpaywallClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &UnpaywallClient{
		client: &http.Client{Timeout: timeout},
		email:  cfg.UnpaywallEmail,
	}
}

// LookupByDOI returns the best open-access location for a DOI. A 404 means
// the DOI is unknown to the service and yields a non-open-access result
// without error.
func (u *UnpaywallClient) LookupByDOI(ctx context.Context, doi string) (OpenAccessResult, error) {
	endpoint := fmt.Sprintf("%s/%s?email=%s", unpaywallBase, url.PathEscape(doi), url.QueryEscape(u.email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return OpenAccessResult{}, fmt.Errorf("building unpaywall request: %w", err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return OpenAccessResult{}, fmt.Errorf("querying unpaywall for %s: %w", doi, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return OpenAccessResult{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return OpenAccessResult{}, fmt.Errorf("unpaywall returned status %d for %s", resp.StatusCode, doi)
	}

	var payload struct {
		IsOA           bool `json:"is_oa"`
		BestOALocation *struct {
			URLForPDF string `json:"url_for_pdf"`
			URL       string `json:"url"`
		} `json:"best_oa_location"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return OpenAccessResult{}, fmt.Errorf("decoding unpaywall response for %s: %w", doi, err)
	}

	res := OpenAccessResult{IsOpenAccess: payload.IsOA}
	if payload.BestOALocation != nil {
		res.PDFURL = payload.BestOALocation.URLForPDF
		if res.PDFURL == "" {
			res.PDFURL = payload.BestOALocation.URL
		}
	}
	return res, nil
}

// openAccessStrategy consults the open-access service by DOI. Papers without
// a DOI skip this stage.
type openAccessStrategy struct {
	client *UnpaywallClient
}

// NewOpenAccessStrategy returns the second-stage strategy of the chain.
func NewOpenAccessStrategy(client *UnpaywallClient) Strategy {
	return &openAccessStrategy{client: client}
}

func (s *openAccessStrategy) Name() string { return "open_access_lookup" }
func (s *openAccessStrategy) State() State { return OpenAccessLookup }

func (s *openAccessStrategy) Candidates(ctx context.Context, req Request) ([]types.Candidate, error) {
	if req.DOI == "" {
		return nil, nil
	}
	res, err := s.client.LookupByDOI(ctx, req.DOI)
	if err != nil {
		return nil, err
	}
	if !res.IsOpenAccess || res.PDFURL == "" {
		return nil, nil
	}
	return []types.Candidate{{
		URL:     res.PDFURL,
		Sources: []string{candidates.SourceOpenAccess},
		Score:   candidates.Score(res.PDFURL, candidates.SourceOpenAccess),
		Meta:    map[string]string{"doi": req.DOI},
	}}, nil
}
