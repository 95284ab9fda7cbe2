// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"strings"

	"github.com/pdiddy/scholar-harvest/internal/browse"
	"github.com/pdiddy/scholar-harvest/internal/candidates"
	"github.com/pdiddy/scholar-harvest/internal/textutil"
	"github.com/pdiddy/scholar-harvest/internal/trend"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// Detail view selectors.
const (
	fieldSelector    = "div.gsc_oci_value"
	titleLinkDetail  = "a.gsc_oci_title_link"
	versionsSelector = "a.gsc_oci_merged_snippet a, div.gsc_oci_merged_snippet a"
)

// doiMetaNames are metadata tags that may carry a DOI.
var doiMetaNames = []string{"citation_doi", "dc.identifier", "dc.Identifier", "prism.doi"}

// doiStrategy pairs a label (for run statistics) with an extraction attempt.
type doiStrategy struct {
	name string
	fn   func(page browse.Page, cands []types.Candidate) string
}

// doiStrategies is the fixed DOI extraction cascade: most structured source
// first, raw URL digging last.
var doiStrategies = []doiStrategy{
	{"doi_org_anchor", doiFromAnchors},
	{"meta_tag", doiFromMetaTags},
	{"json_ld", doiFromJSONLD},
	{"field_section", doiFromFieldSections},
	{"page_text", doiFromPageText},
	{"candidate_url", doiFromCandidateURLs},
}

// DetailEnrichment is what a detail page adds to a draft record.
type DetailEnrichment struct {
	Candidates  []types.Candidate
	DOI         string
	DOIStrategy string
	Year        string
	Trend       []types.TrendPoint
}

// EnrichFromDetail scans an already-navigated detail page for download-link
// candidates, a DOI, a recovered year, and the citation trend. Every part is
// independent; a miss in one never blocks the others.
func EnrichFromDetail(page browse.Page, trendExtractor *trend.Extractor) DetailEnrichment {
	var enr DetailEnrichment

	store := candidates.NewStore()
	collectDetailCandidates(page, store)
	enr.Candidates = store.Snapshot()

	for _, strategy := range doiStrategies {
		if doi := strategy.fn(page, enr.Candidates); doi != "" {
			enr.DOI = doi
			enr.DOIStrategy = strategy.name
			break
		}
	}

	enr.Year = yearFromFieldSections(page)

	if trendExtractor != nil {
		enr.Trend = trendExtractor.Extract(page)
	}
	return enr
}

// collectDetailCandidates gathers candidates from the title link, all field
// anchors, declared metadata links, merged-version snippets, and encoded
// attributes.
func collectDetailCandidates(page browse.Page, store *candidates.Store) {
	if title := page.Query(titleLinkDetail); title != nil {
		if href, ok := title.Attribute("href"); ok {
			store.Register(href, candidates.SourcePageAnchor, map[string]string{"link_text": title.Text()})
		}
	}

	for _, anchor := range page.QueryAll("a[href]") {
		href, _ := anchor.Attribute("href")
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			continue
		}
		store.Register(href, candidates.SourcePageAnchor, map[string]string{"link_text": textutil.CleanText(anchor.Text())})
		registerEncodedAttrs(anchor, store)
	}

	for _, link := range page.QueryAll(`link[rel="alternate"]`) {
		if typ, _ := link.Attribute("type"); strings.Contains(strings.ToLower(typ), "pdf") {
			if href, ok := link.Attribute("href"); ok {
				store.Register(href, candidates.SourceLinkRel, nil)
			}
		}
	}
	for _, meta := range page.QueryAll(`meta[name="citation_pdf_url"]`) {
		if content, ok := meta.Attribute("content"); ok {
			store.Register(content, candidates.SourceMetaTag, nil)
		}
	}

	for _, anchor := range page.QueryAll(versionsSelector) {
		if href, ok := anchor.Attribute("href"); ok {
			store.Register(href, candidates.SourceAllVersions, nil)
		}
	}

	if content, err := page.Content(); err == nil {
		for _, u := range textutil.ExtractEncodedURLs(content) {
			store.Register(u, candidates.SourceDetailScan, nil)
		}
	}
}

func doiFromAnchors(page browse.Page, _ []types.Candidate) string {
	for _, anchor := range page.QueryAll(`a[href*="doi.org"], a[href*="/doi/"]`) {
		href, _ := anchor.Attribute("href")
		if doi := textutil.DOIFromURL(href); doi != "" {
			return doi
		}
		if doi := textutil.ExtractDOI(anchor.Text()); doi != "" {
			return doi
		}
	}
	return ""
}

func doiFromMetaTags(page browse.Page, _ []types.Candidate) string {
	for _, name := range doiMetaNames {
		for _, meta := range page.QueryAll(`meta[name="` + name + `"]`) {
			if content, ok := meta.Attribute("content"); ok {
				if doi := textutil.ExtractDOI(content); doi != "" {
					return doi
				}
			}
		}
	}
	return ""
}

func doiFromJSONLD(page browse.Page, _ []types.Candidate) string {
	for _, script := range page.QueryAll(`script[type="application/ld+json"]`) {
		body, err := script.HTML()
		if err != nil {
			continue
		}
		if doi := textutil.ExtractDOI(body); doi != "" {
			return doi
		}
	}
	return ""
}

func doiFromFieldSections(page browse.Page, _ []types.Candidate) string {
	for _, field := range page.QueryAll(fieldSelector) {
		if doi := textutil.ExtractDOI(field.Text()); doi != "" {
			return doi
		}
	}
	return ""
}

func doiFromPageText(page browse.Page, _ []types.Candidate) string {
	content, err := page.Content()
	if err != nil {
		return ""
	}
	return textutil.ExtractDOI(content)
}

func doiFromCandidateURLs(_ browse.Page, cands []types.Candidate) string {
	for _, c := range cands {
		if doi := textutil.DOIFromURL(c.URL); doi != "" {
			return doi
		}
	}
	return ""
}

// yearFromFieldSections recovers a publication year from the detail view's
// metadata fields.
func yearFromFieldSections(page browse.Page) string {
	for _, field := range page.QueryAll(fieldSelector) {
		if year := textutil.ExtractYear(field.Text()); year != "" {
			return year
		}
	}
	return ""
}
