// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/scholar-harvest/internal/browse"
	"github.com/pdiddy/scholar-harvest/internal/candidates"
	"github.com/pdiddy/scholar-harvest/internal/fallback"
	"github.com/pdiddy/scholar-harvest/internal/identity"
	"github.com/pdiddy/scholar-harvest/internal/trend"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// Result is one completed author harvest.
type Result struct {
	Papers []types.PaperRecord
	Term   TermState
	Stats  types.RunStats
	Debug  *types.DebugReport
}

// Harvester runs the full per-author pipeline: paginate the profile listing,
// enrich each paper from its detail view, and resolve a download link per
// paper through validation and the fallback chain.
type Harvester struct {
	browser   browse.Browser
	validator fallback.Validator
	chain     *fallback.Chain
	trends    *trend.Extractor
	cfg       types.HarvestConfig
	log       io.Writer
}

// NewHarvester wires the pipeline. chain may be nil to disable fallback
// resolution; log may be nil to discard progress output.
func NewHarvester(browser browse.Browser, validator fallback.Validator, chain *fallback.Chain, cfg types.HarvestConfig, log io.Writer) *Harvester {
	if log == nil {
		log = io.Discard
	}
	if cfg.MaxPapers <= 0 {
		cfg.MaxPapers = 50
	}
	if cfg.DedupBuffer <= 0 {
		cfg.DedupBuffer = 20
	}
	return &Harvester{
		browser:   browser,
		validator: validator,
		chain:     chain,
		trends:    trend.NewExtractor(),
		cfg:       cfg,
		log:       log,
	}
}

// Run harvests one author. Papers degraded by network trouble are still
// emitted with whatever fields resolved; only a failed profile load aborts.
func (h *Harvester) Run(ctx context.Context, ident identity.Identity) (*Result, error) {
	page, err := h.browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	if err := page.Navigate(ctx, ident.ProfileURL); err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	controller := &Controller{
		Target:      h.cfg.MaxPapers,
		BufferCap:   h.cfg.DedupBuffer,
		SettleDelay: h.cfg.SettleDelay,
		PageDelay:   h.cfg.PageDelay,
		Log:         h.log,
	}
	rows, term, err := controller.Run(ctx, NewProfileSource(page))
	if err != nil && len(rows) == 0 {
		return nil, fmt.Errorf("paginating profile: %w", err)
	}

	res := &Result{Term: term}
	res.Stats.DOIStrategies = make(map[string]int)
	if h.cfg.CollectDebug {
		res.Debug = &types.DebugReport{
			GeneratedAt: time.Now().UTC(),
			AuthorID:    ident.AuthorID,
			TargetCount: h.cfg.MaxPapers,
		}
	}

	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}
		rec := h.resolvePaper(ctx, page, row, res)
		res.Papers = append(res.Papers, rec)
		res.Stats.PapersCollected++
	}

	if res.Debug != nil {
		res.Debug.Stats = res.Stats
	}
	return res, nil
}

// resolvePaper enriches one draft record and resolves its download link.
// Resolution never reverts an already-populated field.
func (h *Harvester) resolvePaper(ctx context.Context, page browse.Page, row Row, res *Result) types.PaperRecord {
	rec := row.Record

	var debug *types.PaperDebug
	if res.Debug != nil {
		debug = &types.PaperDebug{
			Title:            rec.Title,
			DetailLink:       rec.DetailLink,
			InlineCandidates: row.Candidates,
		}
		defer func() { res.Debug.Papers = append(res.Debug.Papers, *debug) }()
	}

	store := candidates.NewStore()
	store.Absorb(row.Candidates)

	detailLoaded := false
	if rec.DetailLink != "" {
		if err := page.Navigate(ctx, rec.DetailLink); err != nil {
			fmt.Fprintf(h.log, "detail page for %q failed: %v\n", rec.Title, err)
			if debug != nil {
				debug.Errors = append(debug.Errors, err.Error())
			}
		} else {
			detailLoaded = true
			enr := EnrichFromDetail(page, h.trends)
			store.Absorb(enr.Candidates)
			if debug != nil {
				debug.DetailCandidates = enr.Candidates
			}

			if rec.DOI == "" && enr.DOI != "" {
				rec.DOI = enr.DOI
				res.Stats.DOIFound++
				res.Stats.CountDOIStrategy(enr.DOIStrategy)
				if debug != nil {
					debug.DOISources = append(debug.DOISources, enr.DOIStrategy)
				}
			}
			if rec.Year == "" {
				rec.Year = enr.Year
			}
			if len(rec.CitationTrend) == 0 {
				rec.CitationTrend = enr.Trend
			}
		}
	}

	rec.DownloadLink = h.resolveDownload(ctx, page, store, &rec, detailLoaded, res, debug)
	if debug != nil {
		debug.FinalDownloadLink = rec.DownloadLink
	}
	return rec
}

// resolveDownload picks the paper's final link: first a validated candidate
// from everything discovered so far, then the fallback chain, then the
// resolver's unvalidated best as a last resort.
func (h *Harvester) resolveDownload(ctx context.Context, page browse.Page, store *candidates.Store, rec *types.PaperRecord, detailLoaded bool, res *Result, debug *types.PaperDebug) string {
	snapshot := store.Snapshot()

	if h.validator != nil {
		urls := make([]string, 0, len(snapshot))
		for _, c := range snapshot {
			if candidates.IsProfileLink(c.URL) {
				continue
			}
			urls = append(urls, c.URL)
		}
		if live, ok := h.validator.FirstLive(ctx, urls); ok {
			res.Stats.DownloadNative++
			return live
		}
	}

	if h.chain != nil {
		req := fallback.Request{
			DOI:         rec.DOI,
			Title:       rec.Title,
			FirstAuthor: firstAuthor(rec.Authors),
		}
		if detailLoaded {
			req.Page = page
		}
		chainRes := h.chain.Resolve(ctx, req)
		if rec.DOI != "" && attempted(chainRes.Attempted, "open_access_lookup") {
			res.Stats.APICalls++
		}
		if attempted(chainRes.Attempted, "mirror_lookup") {
			res.Stats.MirrorAttempts++
			if debug != nil {
				debug.MirrorAttempted = true
			}
		}
		if chainRes.Found {
			store.Absorb([]types.Candidate{chainRes.Candidate})
			switch {
			case hasSource(chainRes.Candidate, candidates.SourceMirror):
				res.Stats.MirrorSuccesses++
				res.Stats.DownloadMirror++
				if debug != nil {
					debug.MirrorSucceeded = true
				}
			case hasSource(chainRes.Candidate, candidates.SourceOpenAccess):
				res.Stats.DownloadOpenAccess++
			default:
				res.Stats.DownloadNative++
			}
			return chainRes.Candidate.URL
		}
	}

	// Nothing validated: surface the resolver's best unvalidated candidate
	// rather than nothing at all. Only papers left with no link count as
	// link-less.
	if best, ok := candidates.SelectBest(store.Snapshot()); ok && best.URL != "" {
		return best.URL
	}
	res.Stats.DownloadNone++
	return ""
}

func hasSource(c types.Candidate, source string) bool {
	for _, s := range c.Sources {
		if s == source {
			return true
		}
	}
	return false
}

func attempted(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

// firstAuthor returns the first name in a comma-separated author string.
func firstAuthor(authors string) string {
	if i := strings.Index(authors, ","); i >= 0 {
		return strings.TrimSpace(authors[:i])
	}
	return strings.TrimSpace(authors)
}
