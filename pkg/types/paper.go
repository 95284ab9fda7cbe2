// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar-harvest pipeline.
// See docs/ARCHITECTURE § Data Structures.
package types

import "strings"

// CitationMissing is the sentinel for an unknown citation count. A count of
// zero means the source confirmed zero citations; CitationMissing means the
// source never exposed a count at all.
const CitationMissing = -1

// TrendPoint is one entry of a citation-count time series.
type TrendPoint struct {
	// Year is the 4-digit publication year label for this bucket.
	Year string `json:"year" yaml:"year"`

	// Citations is the non-negative citation count for the year.
	Citations int `json:"citations" yaml:"citations"`
}

// Candidate is a discovered reference to a potential document location.
type Candidate struct {
	// URL is the absolute, normalized candidate location.
	URL string `json:"url" yaml:"url"`

	// Sources lists the origin labels under which this URL was discovered
	// (e.g. "row_anchor", "detail_page", "mirror"). Sorted, no duplicates.
	Sources []string `json:"sources" yaml:"sources"`

	// Score is the priority of the candidate; lower is more preferred.
	// Across repeated discoveries the minimum seen is kept.
	Score int `json:"score" yaml:"score"`

	// Meta carries free-form provenance (link text, HTML class, matched
	// attribute). Merged non-destructively: the first-seen value for a key wins.
	Meta map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// PaperRecord is one harvested publication.
type PaperRecord struct {
	// Title is the paper title; required, and the basis of the dedup key.
	Title string `json:"title" yaml:"title"`

	// Authors is the author list as rendered by the source.
	Authors string `json:"authors" yaml:"authors"`

	// Year is the 4-digit publication year, or empty when unknown.
	Year string `json:"year" yaml:"year"`

	// Publication is the venue (journal, conference, publisher string).
	Publication string `json:"publication" yaml:"publication"`

	// CitationCount is the total citation count, or CitationMissing.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// DOI is the digital object identifier, or empty when not discovered.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// DownloadLink is the resolved best document link, or empty.
	DownloadLink string `json:"download_link,omitempty" yaml:"download_link,omitempty"`

	// CitationTrend is the per-year citation series, ascending by year.
	// Empty is a valid outcome ("no trend data"), not an error.
	CitationTrend []TrendPoint `json:"citation_trend,omitempty" yaml:"citation_trend,omitempty"`

	// DetailLink is the source's per-paper detail view URL, if any.
	DetailLink string `json:"detail_link,omitempty" yaml:"detail_link,omitempty"`
}

// DedupKey returns the identity key for the record: the case-normalized,
// whitespace-collapsed title. Two records with the same key are the same paper.
func (p PaperRecord) DedupKey() string {
	return strings.Join(strings.Fields(strings.ToLower(p.Title)), " ")
}
