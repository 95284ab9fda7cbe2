// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunStats holds the per-run counters accumulated while harvesting one author.
// A single Stats value is threaded through the pipeline and merged into the
// debug report at the end; there is no global mutable state.
type RunStats struct {
	PapersCollected int `json:"papers_collected" yaml:"papers_collected"`

	// DOIFound counts papers for which any strategy produced a DOI.
	DOIFound int `json:"doi_found" yaml:"doi_found"`

	// DOIStrategies counts hits per DOI discovery strategy name.
	DOIStrategies map[string]int `json:"doi_strategies,omitempty" yaml:"doi_strategies,omitempty"`

	// DownloadNative counts links resolved from the primary source itself.
	DownloadNative int `json:"download_native" yaml:"download_native"`

	// DownloadOpenAccess counts links resolved via the open-access lookup.
	DownloadOpenAccess int `json:"download_open_access" yaml:"download_open_access"`

	// DownloadMirror counts links resolved via the mirror fallback.
	DownloadMirror int `json:"download_mirror" yaml:"download_mirror"`

	// DownloadNone counts papers left without any document link.
	DownloadNone int `json:"download_none" yaml:"download_none"`

	MirrorAttempts  int `json:"mirror_attempts" yaml:"mirror_attempts"`
	MirrorSuccesses int `json:"mirror_successes" yaml:"mirror_successes"`

	// APICalls counts requests made to the open-access/API collaborator.
	APICalls int `json:"api_calls" yaml:"api_calls"`
}

// CountDOIStrategy records a hit for the named DOI discovery strategy.
func (s *RunStats) CountDOIStrategy(name string) {
	if s.DOIStrategies == nil {
		s.DOIStrategies = make(map[string]int)
	}
	s.DOIStrategies[name]++
}

// PaperDebug is the per-paper section of a debug report: every discovered
// candidate with score/source/meta and the final resolved link. Used for
// troubleshooting resolution decisions, never for control flow.
type PaperDebug struct {
	Title             string      `json:"title" yaml:"title"`
	DetailLink        string      `json:"detail_link,omitempty" yaml:"detail_link,omitempty"`
	InlineCandidates  []Candidate `json:"inline_candidates,omitempty" yaml:"inline_candidates,omitempty"`
	DetailCandidates  []Candidate `json:"detail_candidates,omitempty" yaml:"detail_candidates,omitempty"`
	FinalDownloadLink string      `json:"final_download_link" yaml:"final_download_link"`
	DOISources        []string    `json:"doi_sources,omitempty" yaml:"doi_sources,omitempty"`
	MirrorAttempted   bool        `json:"mirror_attempted" yaml:"mirror_attempted"`
	MirrorSucceeded   bool        `json:"mirror_succeeded" yaml:"mirror_succeeded"`
	Errors            []string    `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// DebugReport is the structured dump of one harvest run.
type DebugReport struct {
	GeneratedAt time.Time    `json:"generated_at" yaml:"generated_at"`
	AuthorID    string       `json:"author_id" yaml:"author_id"`
	TargetCount int          `json:"target_count" yaml:"target_count"`
	Stats       RunStats     `json:"stats" yaml:"stats"`
	Papers      []PaperDebug `json:"papers,omitempty" yaml:"papers,omitempty"`
}
