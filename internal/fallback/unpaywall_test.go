// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fallback

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-harvest/internal/candidates"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

func fallbackConfig(email string) types.FallbackConfig {
	return types.FallbackConfig{
		HTTPConfig:     types.HTTPConfig{Timeout: 5 * time.Second},
		UnpaywallEmail: email,
	}
}

func TestLookupByDOIOpenAccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "harvester@example.org", r.URL.Query().Get("email"))
		fmt.Fprint(w, `{"is_oa": true, "best_oa_location": {"url_for_pdf": "https://repo.example/oa.pdf"}}`)
	}))
	defer srv.Close()

	orig := unpaywallBase
	unpaywallBase = srv.URL
	defer func() { unpaywallBase = orig }()

	client := NewUnpaywallClient(fallbackConfig("harvester@example.org"))
	res, err := client.LookupByDOI(context.Background(), "10.1234/example.5678")
	require.NoError(t, err)
	assert.True(t, res.IsOpenAccess)
	assert.Equal(t, "https://repo.example/oa.pdf", res.PDFURL)
}

func TestLookupByDOIFallsBackToLocationURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"is_oa": true, "best_oa_location": {"url": "https://repo.example/landing"}}`)
	}))
	defer srv.Close()

	orig := unpaywallBase
	unpaywallBase = srv.URL
	defer func() { unpaywallBase = orig }()

	client := NewUnpaywallClient(fallbackConfig("harvester@example.org"))
	res, err := client.LookupByDOI(context.Background(), "10.1234/x")
	require.NoError(t, err)
	assert.Equal(t, "https://repo.example/landing", res.PDFURL)
}

func TestLookupByDOIUnknownDOI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	orig := unpaywallBase
	unpaywallBase = srv.URL
	defer func() { unpaywallBase = orig }()

	client := NewUnpaywallClient(fallbackConfig("harvester@example.org"))
	res, err := client.LookupByDOI(context.Background(), "10.9999/unknown")
	require.NoError(t, err)
	assert.False(t, res.IsOpenAccess)
	assert.Empty(t, res.PDFURL)
}

func TestOpenAccessStrategySkipsWithoutDOI(t *testing.T) {
	strategy := NewOpenAccessStrategy(NewUnpaywallClient(fallbackConfig("harvester@example.org")))
	cands, err := strategy.Candidates(context.Background(), Request{Title: "Some Paper"})
	assert.NoError(t, err)
	assert.Empty(t, cands)
}

func TestOpenAccessStrategyYieldsCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"is_oa": true, "best_oa_location": {"url_for_pdf": "https://repo.example/oa.pdf"}}`)
	}))
	defer srv.Close()

	orig := unpaywallBase
	unpaywallBase = srv.URL
	defer func() { unpaywallBase = orig }()

	strategy := NewOpenAccessStrategy(NewUnpaywallClient(fallbackConfig("harvester@example.org")))
	cands, err := strategy.Candidates(context.Background(), Request{DOI: "10.1234/example.5678"})
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "https://repo.example/oa.pdf", cands[0].URL)
	assert.Equal(t, []string{candidates.SourceOpenAccess}, cands[0].Sources)
	assert.Equal(t, 0, cands[0].Score)
	assert.Equal(t, "10.1234/example.5678", cands[0].Meta["doi"])
}

func TestOpenAccessStrategyClosedAccessYieldsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"is_oa": false}`)
	}))
	defer srv.Close()

	orig := unpaywallBase
	unpaywallBase = srv.URL
	defer func() { unpaywallBase = orig }()

	strategy := NewOpenAccessStrategy(NewUnpaywallClient(fallbackConfig("harvester@example.org")))
	cands, err := strategy.Candidates(context.Background(), Request{DOI: "10.1234/closed"})
	assert.NoError(t, err)
	assert.Empty(t, cands)
}
