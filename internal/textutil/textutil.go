// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil provides the structured-text cleanup utilities shared by the
// extraction stages: whitespace normalization, year and DOI recognition, and
// recovery of URLs embedded in encoded element attributes.
package textutil

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// yearPattern matches a plausible 4-digit publication year (1900-2099).
var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// doiPattern matches a DOI in free text: "10.xxxx/xxxxx".
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"')\]]+`)

// doiURLPatterns recognize DOIs embedded in URLs, most specific first.
var doiURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/doi/(?:pdf|pdfdirect|abs|full)/(10\.\d+/[^\s?&#]+)`),
	regexp.MustCompile(`(?i)doi\.org/(10\.\d+/[^\s?&#]+)`),
	regexp.MustCompile(`(?i)doi[=:](10\.\d+/[^\s?&#]+)`),
	regexp.MustCompile(`(?i)/doi/(10\.\d+/[^\s?&#]+)`),
}

// trailingPunct strips punctuation that commonly trails a DOI in running text.
var trailingPunct = regexp.MustCompile(`[.,;:)\]]+$`)

// encodedURLPattern matches URL-bearing parameters inside data attributes such
// as data-clk or onclick strings: url=, u=, href=, q=.
var encodedURLPattern = regexp.MustCompile(`(?:^|[?&;])(?:url|u|href|q)=([^&;]+)`)

// citedByPatterns recover a citation count from surrounding text.
var citedByPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)cited\s+by\s+(\d{1,3}(?:,\d{3})*)`),
	regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*)\s+citations?`),
	regexp.MustCompile(`(?i)citations?[:\s]+(\d{1,3}(?:,\d{3})*)`),
}

var digitRun = regexp.MustCompile(`\d+`)

// CleanText collapses all runs of whitespace to single spaces and trims.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExtractYear returns the first 4-digit year found in text, or "".
func ExtractYear(text string) string {
	return yearPattern.FindString(text)
}

// ExtractDOI returns the first DOI found in free text, with trailing
// punctuation stripped, or "".
func ExtractDOI(text string) string {
	doi := doiPattern.FindString(text)
	if doi == "" {
		return ""
	}
	return trailingPunct.ReplaceAllString(doi, "")
}

// DOIFromURL extracts a DOI embedded in a URL. Repository URLs frequently
// carry the DOI in their path ("/doi/pdf/10.1073/...") or as a doi.org link.
// Returns "" when the URL carries no DOI.
func DOIFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	for _, pattern := range doiURLPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			doi := trailingPunct.ReplaceAllString(m[1], "")
			if strings.HasPrefix(doi, "10.") {
				return doi
			}
		}
	}
	return ""
}

// ParseCitationCount extracts a citation count from an element's text, e.g.
// "Cited by 5,754" or "5754". The ok result is false when the text carries no
// count at all; callers record the missing sentinel rather than zero.
func ParseCitationCount(text string) (int, bool) {
	compact := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(text))
	if m := digitRun.FindString(compact); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil {
			return n, true
		}
	}
	for _, pattern := range citedByPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// ExtractEncodedURLs recovers URLs from attribute values such as data-clk or
// onclick strings, where targets hide behind url=/u=/href=/q= parameters.
func ExtractEncodedURLs(raw string) []string {
	if raw == "" {
		return nil
	}
	decoded := html.UnescapeString(raw)
	var urls []string
	for _, m := range encodedURLPattern.FindAllStringSubmatch(decoded, -1) {
		value := m[1]
		if unescaped, err := url.QueryUnescape(value); err == nil {
			value = unescaped
		}
		if value != "" {
			urls = append(urls, value)
		}
	}
	return urls
}
