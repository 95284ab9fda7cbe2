// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fallback

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/scholar-harvest/internal/candidates"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// downloadTokens mark anchor text that advertises full text.
var downloadTokens = []string{"pdf", "download", "full text", "full-text", "view article"}

// metaLinkNames are document-metadata tags whose content is a direct PDF URL.
var metaLinkNames = []string{
	"citation_pdf_url",
	"citation_fulltext_html_url",
	"eprints.document_url",
	"bepress_citation_pdf_url",
}

// nativeScan inspects the already-loaded detail view for plausible document
// links: extension matches, repository-domain anchors, download-labelled
// anchors, and declared metadata links.
type nativeScan struct{}

// NewNativeScan returns the first-stage strategy of the chain.
func NewNativeScan() Strategy { return nativeScan{} }

func (nativeScan) Name() string { return "native_scan" }
func (nativeScan) State() State { return NativeScan }

func (nativeScan) Candidates(ctx context.Context, req Request) ([]types.Candidate, error) {
	if req.Page == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []types.Candidate
	add := func(url, source string) {
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}
		out = append(out, types.Candidate{
			URL:     url,
			Sources: []string{source},
			Score:   candidates.Score(url, source),
		})
	}

	for _, anchor := range req.Page.QueryAll("a[href]") {
		href, _ := anchor.Attribute("href")
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			continue
		}
		if looksLikeDocumentLink(href, anchor.Text()) {
			add(href, candidates.SourcePageAnchor)
		}
		for _, attr := range []string{"data-href", "data-url", "data-clk-atid"} {
			if v, ok := anchor.Attribute(attr); ok && looksLikeDocumentLink(v, "") {
				add(v, candidates.SourcePageAttr)
			}
		}
	}

	for _, link := range req.Page.QueryAll(`link[rel="alternate"]`) {
		typ, _ := link.Attribute("type")
		if !strings.Contains(strings.ToLower(typ), "pdf") {
			continue
		}
		if href, ok := link.Attribute("href"); ok {
			add(href, candidates.SourceLinkRel)
		}
	}

	for _, name := range metaLinkNames {
		for _, meta := range req.Page.QueryAll(fmt.Sprintf(`meta[name=%q]`, name)) {
			if content, ok := meta.Attribute("content"); ok {
				add(content, candidates.SourceMetaTag)
			}
		}
	}

	return out, nil
}

// looksLikeDocumentLink reports whether a URL or its anchor text plausibly
// points at full text.
func looksLikeDocumentLink(url, text string) bool {
	lowerURL := strings.ToLower(url)
	trimmed := lowerURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if strings.HasSuffix(trimmed, ".pdf") || strings.Contains(lowerURL, "pdf") {
		return true
	}
	if candidates.Score(url, candidates.SourcePageAnchor) <= 1 {
		return true
	}
	lowerText := strings.ToLower(text)
	for _, token := range downloadTokens {
		if strings.Contains(lowerText, token) {
			return true
		}
	}
	return false
}
