// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-harvest/pkg/types"
)

func apiConfig() types.APIConfig {
	return types.APIConfig{
		HTTPConfig:        types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "scholar-harvest-test"},
		RequestsPerSecond: 1000,
	}
}

func withTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	orig := semanticAPIBase
	semanticAPIBase = srv.URL
	t.Cleanup(func() { semanticAPIBase = orig })

	return NewClient(apiConfig())
}

func TestSearchAuthors(t *testing.T) {
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/author/search", r.URL.Path)
		assert.Equal(t, "jane doe", r.URL.Query().Get("query"))
		fmt.Fprint(w, `{"data": [
			{"authorId": "144", "name": "Jane Doe", "paperCount": 42, "citationCount": 1200},
			{"authorId": "377", "name": "Jane B. Doe", "paperCount": 3, "citationCount": 15}
		]}`)
	})

	authors, err := client.SearchAuthors(context.Background(), "jane doe")
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "144", authors[0].AuthorID)
	assert.Equal(t, 1200, authors[0].CitationCount)
}

func TestSearchAuthorsEmptyQuery(t *testing.T) {
	client := NewClient(apiConfig())
	_, err := client.SearchAuthors(context.Background(), "")
	assert.Error(t, err)
}

func TestAuthorPapersSortedByCitations(t *testing.T) {
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/author/144/papers", r.URL.Path)
		fmt.Fprint(w, `{"data": [
			{"paperId": "a", "title": "Minor Note", "year": 2021, "citationCount": 4},
			{"paperId": "b", "title": "Landmark Study", "year": 2018, "citationCount": 900,
			 "externalIds": {"DOI": "10.1234/landmark"},
			 "openAccessPdf": {"url": "https://repo.example/landmark.pdf"}},
			{"paperId": "c", "title": "Follow-up", "year": 2020, "citationCount": 120}
		]}`)
	})

	papers, err := client.AuthorPapers(context.Background(), "144", 50)
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "Landmark Study", papers[0].Title)
	assert.Equal(t, "Follow-up", papers[1].Title)
	assert.Equal(t, "Minor Note", papers[2].Title)
	assert.Equal(t, "10.1234/landmark", papers[0].ExternalIDs.DOI)
}

func TestAPIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	orig := semanticAPIBase
	semanticAPIBase = srv.URL
	defer func() { semanticAPIBase = orig }()

	cfg := apiConfig()
	cfg.APIKey = "sekrit"
	client := NewClient(cfg)

	_, err := client.SearchAuthors(context.Background(), "anyone")
	require.NoError(t, err)
	assert.Equal(t, "sekrit", gotKey)
}

func TestGetErrorStatus(t *testing.T) {
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.SearchAuthors(context.Background(), "anyone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestRecords(t *testing.T) {
	papers := []Paper{
		{
			Title:         "Landmark Study",
			Year:          2018,
			Venue:         "Journal of Examples",
			CitationCount: 900,
			OpenAccessPDF: &struct {
				URL string `json:"url"`
			}{URL: "https://repo.example/landmark.pdf"},
		},
		{Title: "Untracked", CitationCount: 0},
	}
	papers[0].ExternalIDs.DOI = "10.1234/landmark"

	recs := Records(papers)
	require.Len(t, recs, 2)
	assert.Equal(t, "Landmark Study", recs[0].Title)
	assert.Equal(t, "2018", recs[0].Year)
	assert.Equal(t, "Journal of Examples", recs[0].Publication)
	assert.Equal(t, "10.1234/landmark", recs[0].DOI)
	assert.Equal(t, "https://repo.example/landmark.pdf", recs[0].DownloadLink)
	assert.Empty(t, recs[1].Year)
}
