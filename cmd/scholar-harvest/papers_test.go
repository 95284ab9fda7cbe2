// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/scholar-harvest/internal/fallback"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// setProber answers IsLive from a fixed set of live URLs.
type setProber struct {
	live   map[string]bool
	probes []string
}

func (p *setProber) IsLive(_ context.Context, url string) bool {
	p.probes = append(p.probes, url)
	return p.live[url]
}

// mapOpenAccess answers LookupByDOI from a fixed DOI table.
type mapOpenAccess struct {
	byDOI   map[string]fallback.OpenAccessResult
	err     error
	lookups []string
}

func (m *mapOpenAccess) LookupByDOI(_ context.Context, doi string) (fallback.OpenAccessResult, error) {
	m.lookups = append(m.lookups, doi)
	if m.err != nil {
		return fallback.OpenAccessResult{}, m.err
	}
	return m.byDOI[doi], nil
}

func TestResolvePaperLinksKeepsLiveAPILink(t *testing.T) {
	prober := &setProber{live: map[string]bool{"https://host.org/a.pdf": true}}
	oa := &mapOpenAccess{}
	records := []types.PaperRecord{{Title: "A", DOI: "10.1/a", DownloadLink: "https://host.org/a.pdf"}}

	resolvePaperLinks(context.Background(), prober, oa, records)

	assert.Equal(t, "https://host.org/a.pdf", records[0].DownloadLink)
	assert.Empty(t, oa.lookups)
}

func TestResolvePaperLinksFallsBackOnDeadLink(t *testing.T) {
	prober := &setProber{live: map[string]bool{"https://oa.example/a.pdf": true}}
	oa := &mapOpenAccess{byDOI: map[string]fallback.OpenAccessResult{
		"10.1/a": {IsOpenAccess: true, PDFURL: "https://oa.example/a.pdf"},
	}}
	records := []types.PaperRecord{{Title: "A", DOI: "10.1/a", DownloadLink: "https://host.org/dead.pdf"}}

	resolvePaperLinks(context.Background(), prober, oa, records)

	assert.Equal(t, "https://oa.example/a.pdf", records[0].DownloadLink)
	assert.Equal(t, []string{"10.1/a"}, oa.lookups)
}

func TestResolvePaperLinksFallsBackOnMissingLink(t *testing.T) {
	prober := &setProber{live: map[string]bool{"https://oa.example/b.pdf": true}}
	oa := &mapOpenAccess{byDOI: map[string]fallback.OpenAccessResult{
		"10.1/b": {IsOpenAccess: true, PDFURL: "https://oa.example/b.pdf"},
	}}
	records := []types.PaperRecord{{Title: "B", DOI: "10.1/b"}}

	resolvePaperLinks(context.Background(), prober, oa, records)

	assert.Equal(t, "https://oa.example/b.pdf", records[0].DownloadLink)
}

func TestResolvePaperLinksDropsDeadFallback(t *testing.T) {
	prober := &setProber{}
	oa := &mapOpenAccess{byDOI: map[string]fallback.OpenAccessResult{
		"10.1/c": {IsOpenAccess: true, PDFURL: "https://oa.example/dead.pdf"},
	}}
	records := []types.PaperRecord{{Title: "C", DOI: "10.1/c", DownloadLink: "https://host.org/dead.pdf"}}

	resolvePaperLinks(context.Background(), prober, oa, records)

	assert.Empty(t, records[0].DownloadLink)
}

func TestResolvePaperLinksSkipsLookupWithoutDOI(t *testing.T) {
	prober := &setProber{}
	oa := &mapOpenAccess{}
	records := []types.PaperRecord{{Title: "D", DownloadLink: "https://host.org/dead.pdf"}}

	resolvePaperLinks(context.Background(), prober, oa, records)

	assert.Empty(t, records[0].DownloadLink)
	assert.Empty(t, oa.lookups)
}

func TestResolvePaperLinksSurvivesLookupError(t *testing.T) {
	prober := &setProber{}
	oa := &mapOpenAccess{err: errors.New("service down")}
	records := []types.PaperRecord{
		{Title: "E", DOI: "10.1/e"},
		{Title: "F", DOI: "10.1/f"},
	}

	resolvePaperLinks(context.Background(), prober, oa, records)

	assert.Empty(t, records[0].DownloadLink)
	assert.Equal(t, []string{"10.1/e", "10.1/f"}, oa.lookups)
}
