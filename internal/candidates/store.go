// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package candidates collects, scores, and deduplicates competing download-link
// candidates for one paper and selects the best one under the priority policy.
// See docs/ARCHITECTURE § Candidate Resolution.
package candidates

import (
	"sort"
	"strings"

	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// Store accumulates candidates for a single in-flight paper. Candidates are
// unique by normalized URL; repeated discoveries merge into the existing entry.
// Not safe for concurrent use: one store per paper, driven by one worker.
type Store struct {
	base    string
	byURL   map[string]int
	entries []types.Candidate
}

// NewStore returns an empty store resolving relative URLs against DefaultBase.
func NewStore() *Store {
	return NewStoreWithBase(DefaultBase)
}

// NewStoreWithBase returns an empty store resolving relative URLs against base.
func NewStoreWithBase(base string) *Store {
	return &Store{
		base:  strings.TrimSuffix(base, "/"),
		byURL: make(map[string]int),
	}
}

// NormalizeURL resolves relative and protocol-relative forms against the
// store's base and returns "" for anything that is not an http(s) URL.
func (s *Store) NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(raw, "//"):
		raw = "https:" + raw
	case strings.HasPrefix(raw, "/"):
		raw = s.base + raw
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ""
	}
	return raw
}

// Register records a discovered URL under the given source tag. Empty,
// non-http(s), and already-known URLs never create a second entry: duplicates
// merge by unioning source tags, keeping the minimum score, and keeping the
// first-seen value for each metadata key.
func (s *Store) Register(rawURL, source string, meta map[string]string) {
	normalized := s.NormalizeURL(rawURL)
	if normalized == "" {
		return
	}
	s.merge(types.Candidate{
		URL:     normalized,
		Sources: []string{source},
		Score:   Score(normalized, source),
		Meta:    meta,
	})
}

// Absorb merges an externally built candidate list (e.g. detail-page or mirror
// discoveries) into the store under the same merge rules as Register.
func (s *Store) Absorb(cands []types.Candidate) {
	for _, c := range cands {
		normalized := s.NormalizeURL(c.URL)
		if normalized == "" {
			continue
		}
		c.URL = normalized
		s.merge(c)
	}
}

func (s *Store) merge(c types.Candidate) {
	idx, ok := s.byURL[c.URL]
	if !ok {
		entry := types.Candidate{
			URL:     c.URL,
			Sources: append([]string(nil), c.Sources...),
			Score:   c.Score,
		}
		sort.Strings(entry.Sources)
		if len(c.Meta) > 0 {
			entry.Meta = make(map[string]string, len(c.Meta))
			for k, v := range c.Meta {
				entry.Meta[k] = v
			}
		}
		s.byURL[c.URL] = len(s.entries)
		s.entries = append(s.entries, entry)
		return
	}

	entry := &s.entries[idx]
	if c.Score < entry.Score {
		entry.Score = c.Score
	}
	for _, src := range c.Sources {
		if !containsString(entry.Sources, src) {
			entry.Sources = append(entry.Sources, src)
		}
	}
	sort.Strings(entry.Sources)
	for k, v := range c.Meta {
		if entry.Meta == nil {
			entry.Meta = make(map[string]string)
		}
		if _, exists := entry.Meta[k]; !exists {
			entry.Meta[k] = v
		}
	}
}

// Len returns the number of unique candidates registered.
func (s *Store) Len() int {
	return len(s.entries)
}

// Snapshot returns a copy of all candidates ordered by (score ascending,
// URL ascending). The secondary key exists purely for determinism.
func (s *Store) Snapshot() []types.Candidate {
	out := make([]types.Candidate, len(s.entries))
	copy(out, s.entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].URL < out[j].URL
	})
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
