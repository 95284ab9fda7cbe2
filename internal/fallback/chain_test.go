// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-harvest/internal/candidates"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

type stubStrategy struct {
	name  string
	state State
	cands []types.Candidate
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }
func (s *stubStrategy) State() State { return s.state }
func (s *stubStrategy) Candidates(ctx context.Context, req Request) ([]types.Candidate, error) {
	s.calls++
	return s.cands, s.err
}

type stubValidator struct {
	live map[string]bool
}

func (v stubValidator) FirstLive(ctx context.Context, urls []string) (string, bool) {
	for _, u := range urls {
		if v.live[u] {
			return u, true
		}
	}
	return "", false
}

func cand(url, source string) types.Candidate {
	return types.Candidate{
		URL:     url,
		Sources: []string{source},
		Score:   candidates.Score(url, source),
	}
}

func TestChainShortCircuitsOnFirstValidatedStage(t *testing.T) {
	first := &stubStrategy{
		name:  "native_scan",
		state: NativeScan,
		cands: []types.Candidate{cand("https://host.org/paper.pdf", candidates.SourcePageAnchor)},
	}
	second := &stubStrategy{name: "open_access_lookup", state: OpenAccessLookup}

	chain := NewChain(stubValidator{live: map[string]bool{"https://host.org/paper.pdf": true}}, nil, first, second)
	res := chain.Resolve(context.Background(), Request{})

	require.True(t, res.Found)
	assert.Equal(t, "https://host.org/paper.pdf", res.Candidate.URL)
	assert.Equal(t, NativeScan, res.Final)
	assert.Equal(t, 0, second.calls)
}

func TestChainAdvancesPastEmptyAndFailedStages(t *testing.T) {
	empty := &stubStrategy{name: "native_scan", state: NativeScan}
	broken := &stubStrategy{
		name:  "open_access_lookup",
		state: OpenAccessLookup,
		err:   errors.New("service unreachable"),
	}
	last := &stubStrategy{
		name:  "mirror_lookup",
		state: MirrorLookup,
		cands: []types.Candidate{cand("https://mirror.example/doc.pdf", candidates.SourceMirror)},
	}

	chain := NewChain(stubValidator{live: map[string]bool{"https://mirror.example/doc.pdf": true}}, nil, empty, broken, last)
	res := chain.Resolve(context.Background(), Request{})

	require.True(t, res.Found)
	assert.Equal(t, MirrorLookup, res.Final)
	assert.Equal(t, []string{"native_scan", "open_access_lookup", "mirror_lookup"}, res.Attempted)
}

func TestChainValidatesBestRankedURLFirst(t *testing.T) {
	stage := &stubStrategy{
		name:  "native_scan",
		state: NativeScan,
		cands: []types.Candidate{
			cand("https://other.example/page", candidates.SourcePageAnchor),
			cand("https://host.org/paper.pdf", candidates.SourcePageAnchor),
		},
	}
	chain := NewChain(stubValidator{live: map[string]bool{
		"https://other.example/page": true,
		"https://host.org/paper.pdf": true,
	}}, nil, stage)

	res := chain.Resolve(context.Background(), Request{})
	require.True(t, res.Found)
	assert.Equal(t, "https://host.org/paper.pdf", res.Candidate.URL)
}

func TestChainExhaustsWhenNothingValidates(t *testing.T) {
	stage := &stubStrategy{
		name:  "native_scan",
		state: NativeScan,
		cands: []types.Candidate{cand("https://dead.example/doc.pdf", candidates.SourcePageAnchor)},
	}
	chain := NewChain(stubValidator{}, nil, stage)

	res := chain.Resolve(context.Background(), Request{})
	assert.False(t, res.Found)
	assert.Equal(t, Exhausted, res.Final)
	assert.NotEmpty(t, res.Discovered)
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	stage := &stubStrategy{name: "native_scan", state: NativeScan}
	chain := NewChain(stubValidator{}, nil, stage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := chain.Resolve(ctx, Request{})
	assert.False(t, res.Found)
	assert.Equal(t, 0, stage.calls)
}
