// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"strings"

	"github.com/pdiddy/scholar-harvest/internal/browse"
	"github.com/pdiddy/scholar-harvest/internal/candidates"
	"github.com/pdiddy/scholar-harvest/internal/textutil"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// Profile listing selectors.
const (
	rowSelector      = "tr.gsc_a_tr"
	titleSelector    = "a.gsc_a_at"
	graySelector     = "div.gs_gray"
	citationSelector = "td.gsc_a_c a.gsc_a_ac"
	yearSelector     = "td.gsc_a_y span"
	moreButton       = "button#gsc_bpf_more"
)

// encodedLinkAttrs are row/anchor attributes that carry embedded or encoded
// URLs worth scanning.
var encodedLinkAttrs = []string{"data-clk", "data-url", "data-href", "onclick"}

// ProfileSource reads listing rows from a loaded author-profile page.
type ProfileSource struct {
	page   browse.Page
	cursor int
}

// NewProfileSource wraps an already-navigated profile page.
func NewProfileSource(page browse.Page) *ProfileSource {
	return &ProfileSource{page: page}
}

// Rows returns up to max rows past the consumption cursor, each converted to
// a draft record with its inline candidates.
func (s *ProfileSource) Rows(ctx context.Context, max int) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := s.page.QueryAll(rowSelector)
	if s.cursor >= len(all) {
		return nil, nil
	}
	end := s.cursor + max
	if end > len(all) {
		end = len(all)
	}

	var out []Row
	for _, el := range all[s.cursor:end] {
		out = append(out, extractRow(el))
	}
	s.cursor = end
	return out, nil
}

// RowCount reports how many rows the listing currently shows.
func (s *ProfileSource) RowCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(s.page.QueryAll(rowSelector)), nil
}

// LoadMore clicks the listing's show-more control. Static backends cannot
// click, which surfaces as an error the controller treats as a possible
// stall rather than a hard failure.
func (s *ProfileSource) LoadMore(ctx context.Context) error {
	button := s.page.Query(moreButton)
	if button == nil {
		return nil
	}
	if disabled, ok := button.Attribute("disabled"); ok && disabled != "false" {
		return nil
	}
	return button.Click(ctx)
}

// extractRow builds a draft record from one listing row. Missing citation
// text maps to the explicit missing sentinel, never to zero.
func extractRow(row browse.Element) Row {
	var rec types.PaperRecord
	rec.CitationCount = types.CitationMissing

	store := candidates.NewStore()

	if titles := row.Find(titleSelector); len(titles) > 0 {
		title := titles[0]
		rec.Title = textutil.CleanText(title.Text())
		if href, ok := title.Attribute("href"); ok {
			rec.DetailLink = store.NormalizeURL(href)
			store.Register(href, candidates.SourceRowAnchor, map[string]string{"link_text": rec.Title})
		}
	}

	grays := row.Find(graySelector)
	if len(grays) > 0 {
		rec.Authors = textutil.CleanText(grays[0].Text())
	}
	if len(grays) > 1 {
		rec.Publication = textutil.CleanText(grays[1].Text())
	}

	if cites := row.Find(citationSelector); len(cites) > 0 {
		if n, ok := textutil.ParseCitationCount(cites[0].Text()); ok {
			rec.CitationCount = n
		}
		if href, ok := cites[0].Attribute("href"); ok {
			store.Register(href, candidates.SourceRowAnchor, nil)
		}
	}

	if years := row.Find(yearSelector); len(years) > 0 {
		rec.Year = textutil.ExtractYear(years[0].Text())
	}

	collectRowCandidates(row, store)

	return Row{Record: rec, Candidates: store.Snapshot()}
}

// collectRowCandidates scans every anchor in the row plus encoded link
// attributes on the row itself.
func collectRowCandidates(row browse.Element, store *candidates.Store) {
	for _, anchor := range row.Find("a[href]") {
		href, _ := anchor.Attribute("href")
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		store.Register(href, candidates.SourceRowAnchor, map[string]string{"link_text": textutil.CleanText(anchor.Text())})
		registerEncodedAttrs(anchor, store)
	}
	registerEncodedAttrs(row, store)

	if html, err := row.HTML(); err == nil {
		for _, u := range textutil.ExtractEncodedURLs(html) {
			store.Register(u, candidates.SourceRowData, nil)
		}
	}
}

func registerEncodedAttrs(el browse.Element, store *candidates.Store) {
	for _, attr := range encodedLinkAttrs {
		v, ok := el.Attribute(attr)
		if !ok || v == "" {
			continue
		}
		if strings.HasPrefix(v, "http") || strings.HasPrefix(v, "/") {
			store.Register(v, candidates.SourceDataAttr, map[string]string{"attr": attr})
			continue
		}
		for _, u := range textutil.ExtractEncodedURLs(v) {
			store.Register(u, candidates.SourceDataAttr, map[string]string{"attr": attr})
		}
	}
}
