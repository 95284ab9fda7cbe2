// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package candidates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-harvest/pkg/types"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		source string
		want   int
	}{
		{"pdf extension", "https://host.org/paper.pdf", SourcePageAnchor, 0},
		{"hosted full text", "https://scholar.googleusercontent.com/scholar?q=x", SourcePageAnchor, 0},
		{"pdf token", "https://host.org/download/pdf/123", SourcePageAnchor, 1},
		{"repository domain", "https://arxiv.org/abs/2301.07041", SourcePageAnchor, 1},
		{"profile link", "https://scholar.google.com/citations?user=abc", SourceRowAnchor, 9},
		{"raw row data", "https://host.org/item/42", SourceRowData, 2},
		{"raw data attribute", "https://host.org/item/42", SourceDataAttr, 2},
		{"everything else", "https://host.org/item/42", SourcePageAnchor, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.url, tt.source))
		})
	}
}

func TestIsProfileLink(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"citations listing", "https://scholar.google.com/citations?user=abc&hl=en", true},
		{"citation detail view", "https://scholar.google.com/citations?view_op=view_citation&citation_for_view=x", true},
		{"hosted full text excluded", "https://scholar.googleusercontent.com/scholar?output=pdf", false},
		{"scholar_url redirect excluded", "https://scholar.google.com/scholar_url?url=https://host.org/p.pdf", false},
		{"other domain", "https://arxiv.org/abs/1234.5678", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProfileLink(tt.url))
		})
	}
}

func TestStoreNormalizeURL(t *testing.T) {
	s := NewStore()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"absolute", "https://host.org/p.pdf", "https://host.org/p.pdf"},
		{"protocol relative", "//host.org/p.pdf", "https://host.org/p.pdf"},
		{"site relative", "/citations?user=abc", "https://scholar.google.com/citations?user=abc"},
		{"whitespace trimmed", "  https://host.org/x  ", "https://host.org/x"},
		{"javascript rejected", "javascript:void(0)", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.NormalizeURL(tt.raw))
		})
	}
}

func TestStoreRegisterDedup(t *testing.T) {
	s := NewStore()
	s.Register("https://host.org/paper.pdf", SourceRowAnchor, map[string]string{"text": "PDF"})
	s.Register("https://host.org/paper.pdf", SourceDataAttr, map[string]string{"text": "overwritten?", "attribute": "data-clk"})

	require.Equal(t, 1, s.Len())
	snap := s.Snapshot()
	c := snap[0]
	assert.Equal(t, "https://host.org/paper.pdf", c.URL)
	// Union of source tags, sorted.
	assert.Equal(t, []string{SourceDataAttr, SourceRowAnchor}, c.Sources)
	// Minimum score seen: .pdf scores 0 regardless of source.
	assert.Equal(t, 0, c.Score)
	// First-seen metadata key wins; new keys still merge in.
	assert.Equal(t, "PDF", c.Meta["text"])
	assert.Equal(t, "data-clk", c.Meta["attribute"])
}

func TestStoreRegisterKeepsMinimumScore(t *testing.T) {
	s := NewStore()
	s.Register("https://host.org/item/42", SourcePageAnchor, nil) // score 3
	s.Register("https://host.org/item/42", SourceRowData, nil)    // score 2

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 2, snap[0].Score)
}

func TestStoreRejectsNonHTTP(t *testing.T) {
	s := NewStore()
	s.Register("", SourceRowAnchor, nil)
	s.Register("mailto:author@example.org", SourceRowAnchor, nil)
	s.Register("ftp://host.org/p.pdf", SourceRowAnchor, nil)
	assert.Equal(t, 0, s.Len())
}

func TestSnapshotOrdering(t *testing.T) {
	s := NewStore()
	s.Register("https://b.org/page", SourcePageAnchor, nil)     // 3
	s.Register("https://a.org/paper.pdf", SourcePageAnchor, nil) // 0
	s.Register("https://a.org/page", SourcePageAnchor, nil)     // 3

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "https://a.org/paper.pdf", snap[0].URL)
	assert.Equal(t, "https://a.org/page", snap[1].URL)
	assert.Equal(t, "https://b.org/page", snap[2].URL)
}

func TestStoreAbsorbMerges(t *testing.T) {
	s := NewStore()
	s.Register("https://host.org/paper.pdf", SourceRowAnchor, map[string]string{"text": "PDF"})
	s.Absorb([]types.Candidate{
		{URL: "https://host.org/paper.pdf", Sources: []string{SourceMirror}, Score: 0, Meta: map[string]string{"domain": "mirror.example"}},
		{URL: "https://mirror.example/doc.pdf", Sources: []string{SourceMirror}, Score: 0},
	})

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	merged := snap[0]
	if merged.URL != "https://host.org/paper.pdf" {
		merged = snap[1]
	}
	assert.ElementsMatch(t, []string{SourceRowAnchor, SourceMirror}, merged.Sources)
	assert.Equal(t, "PDF", merged.Meta["text"])
	assert.Equal(t, "mirror.example", merged.Meta["domain"])
}

func TestSelectBestTieBreakInvariance(t *testing.T) {
	profile := types.Candidate{URL: "https://scholar.google.com/citations?user=abc", Score: 9}
	pdf := types.Candidate{URL: "https://host.org/paper.pdf", Score: 0}

	got1, ok1 := SelectBest([]types.Candidate{profile, pdf})
	got2, ok2 := SelectBest([]types.Candidate{pdf, profile})
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, pdf.URL, got1.URL)
	assert.Equal(t, got1.URL, got2.URL)
}

func TestSelectBestNeverPrefersProfileLink(t *testing.T) {
	// The profile link carries a better score on paper, but it is a
	// non-answer: any real candidate beats it.
	profile := types.Candidate{URL: "https://scholar.google.com/citations?user=abc", Score: 1}
	other := types.Candidate{URL: "https://host.org/item/42", Score: 3}

	got, ok := SelectBest([]types.Candidate{profile, other})
	require.True(t, ok)
	assert.Equal(t, other.URL, got.URL)
}

func TestSelectBestSingleProfileCandidate(t *testing.T) {
	profile := types.Candidate{URL: "https://scholar.google.com/citations?user=abc", Score: 9}
	got, ok := SelectBest([]types.Candidate{profile})
	require.True(t, ok)
	assert.Equal(t, profile.URL, got.URL)
}

func TestSelectBestEmpty(t *testing.T) {
	_, ok := SelectBest(nil)
	assert.False(t, ok)
	_, ok = SelectBest([]types.Candidate{{URL: ""}})
	assert.False(t, ok)
}
