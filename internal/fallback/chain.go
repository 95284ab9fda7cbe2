// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fallback resolves a download link for a paper by running an ordered
// chain of discovery strategies, stopping at the first candidate that passes
// network validation.
package fallback

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/scholar-harvest/internal/browse"
	"github.com/pdiddy/scholar-harvest/internal/candidates"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// State tracks chain progress. The chain moves forward only; it never
// revisits a stage for the same paper.
type State int

const (
	NotStarted State = iota
	NativeScan
	OpenAccessLookup
	MirrorLookup
	Exhausted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case NativeScan:
		return "native_scan"
	case OpenAccessLookup:
		return "open_access_lookup"
	case MirrorLookup:
		return "mirror_lookup"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Request carries everything a strategy may use to locate a document.
type Request struct {
	// Page is the already-loaded detail view, nil when unavailable.
	Page browse.Page
	// DOI is the paper's DOI when known, empty otherwise.
	DOI string
	// Title and FirstAuthor back the query fallback when no DOI exists.
	Title       string
	FirstAuthor string
}

// Strategy yields zero or more raw candidates for a request. Errors are
// swallowed by the chain and treated as an empty yield.
type Strategy interface {
	Name() string
	State() State
	Candidates(ctx context.Context, req Request) ([]types.Candidate, error)
}

// Validator confirms candidate URLs against the network.
type Validator interface {
	FirstLive(ctx context.Context, urls []string) (string, bool)
}

// Result reports a chain run: the validated candidate if any, the state the
// chain reached, and which stages were attempted.
type Result struct {
	Candidate  types.Candidate
	Found      bool
	Final      State
	Attempted  []string
	Discovered []types.Candidate
}

// Chain runs strategies in order against a validator.
type Chain struct {
	strategies []Strategy
	validator  Validator
	log        io.Writer
}

// NewChain assembles a chain from explicit strategies. The default pipeline
// is built by callers out of NewNativeScan, NewOpenAccessStrategy, and
// NewMirrorStrategy in that order.
func NewChain(validator Validator, log io.Writer, strategies ...Strategy) *Chain {
	if log == nil {
		log = io.Discard
	}
	return &Chain{strategies: strategies, validator: validator, log: log}
}

// Resolve runs the chain until a stage yields a validated candidate,
// returning immediately without running later stages. A stage's internal
// error degrades to "no candidates from this stage" so a broken detail page
// or unreachable service never aborts the paper.
func (c *Chain) Resolve(ctx context.Context, req Request) Result {
	res := Result{Final: NotStarted}
	for _, strategy := range c.strategies {
		if ctx.Err() != nil {
			return res
		}
		res.Final = strategy.State()
		res.Attempted = append(res.Attempted, strategy.Name())

		found, err := strategy.Candidates(ctx, req)
		if err != nil {
			fmt.Fprintf(c.log, "fallback: %s failed: %v\n", strategy.Name(), err)
			continue
		}
		if len(found) == 0 {
			continue
		}

		// Score and dedupe before validation so the best-ranked URL is
		// probed first.
		store := candidates.NewStore()
		store.Absorb(found)
		snapshot := store.Snapshot()
		res.Discovered = append(res.Discovered, snapshot...)

		urls := make([]string, 0, len(snapshot))
		for _, cand := range snapshot {
			urls = append(urls, cand.URL)
		}
		live, ok := c.validator.FirstLive(ctx, urls)
		if !ok {
			continue
		}
		for _, cand := range snapshot {
			if cand.URL == live {
				res.Candidate = cand
				res.Found = true
				return res
			}
		}
	}
	res.Final = Exhausted
	return res
}
