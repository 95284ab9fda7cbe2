// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package candidates

import "strings"

// Source tags label the discovery origin of a candidate. Scoring treats the
// raw-attribute scans (row data, encoded data attributes) as a distinct band.
const (
	SourceRowAnchor   = "row_anchor"
	SourceDataAttr    = "data_attr"
	SourceRowData     = "row_data"
	SourcePageAnchor  = "page_anchor"
	SourcePageAttr    = "page_anchor_attr"
	SourceLinkRel     = "link_rel"
	SourceMetaTag     = "meta"
	SourceDetailScan  = "detail_scan"
	SourceAllVersions = "all_versions"
	SourceOpenAccess  = "open_access"
	SourceMirror      = "mirror"
	SourceAPIListing  = "api_listing"
)

// DefaultBase is the primary source site; relative candidate URLs resolve
// against it and its profile/listing pages are the last-resort score band.
const DefaultBase = "https://scholar.google.com"

// hostedFullTextDomains serve full text directly on behalf of the primary
// source site.
var hostedFullTextDomains = []string{
	"scholar.googleusercontent.com",
}

// repositoryDomains is the fixed allow-list of scholarly hosting domains that
// usually expose full text one click away.
var repositoryDomains = []string{
	"arxiv.org",
	"researchgate.net",
	"academia.edu",
	"ieeexplore.ieee.org",
	"acm.org",
	"springer.com",
	"link.springer.com",
	"sciencedirect.com",
	"frontiersin.org",
	"nature.com",
	"science.org",
	"mdpi.com",
	"hindawi.com",
	"biorxiv.org",
	"medrxiv.org",
	"pmc.ncbi.nlm.nih.gov",
	"ncbi.nlm.nih.gov/pmc",
}

// profileLinkMarkers identify profile/listing pages of the primary source,
// which never carry an actual document.
var profileLinkMarkers = []string{
	"citations?",
	"view_op=view_citation",
	"scholar?oi=",
}

// IsProfileLink reports whether url points back to a profile/citation listing
// page of the primary source rather than to a document.
func IsProfileLink(url string) bool {
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)
	for _, domain := range hostedFullTextDomains {
		if strings.Contains(lower, domain) {
			return false
		}
	}
	if strings.Contains(lower, "scholar.google.com/scholar_url") {
		return false
	}
	if !strings.Contains(lower, "scholar.google.com") {
		return false
	}
	for _, marker := range profileLinkMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Score assigns a priority to a candidate URL; lower is more preferred.
//
//	0: document extension, or hosted full text of the primary source
//	1: full-text indicator token, or known repository domain
//	2: discovered by a raw attribute/embedded-link scan
//	3: everything else
//	9: profile/listing page of the primary source (last resort)
func Score(url, source string) int {
	lower := strings.ToLower(url)
	if strings.HasSuffix(lower, ".pdf") {
		return 0
	}
	for _, domain := range hostedFullTextDomains {
		if strings.Contains(lower, domain) {
			return 0
		}
	}
	if strings.Contains(lower, "pdf") {
		return 1
	}
	for _, domain := range repositoryDomains {
		if strings.Contains(lower, domain) {
			return 1
		}
	}
	if IsProfileLink(url) {
		return 9
	}
	if source == SourceRowData || source == SourceDataAttr {
		return 2
	}
	return 3
}
