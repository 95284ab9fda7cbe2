// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trend extracts per-year citation series from a paper detail view.
// Several independent strategies are tried in priority order; the first one
// that yields a non-empty, valid series wins. An empty result is a normal
// outcome, not an error.
package trend

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/scholar-harvest/internal/browse"
	"github.com/pdiddy/scholar-harvest/pkg/types"
)

var (
	yearRe    = regexp.MustCompile(`^(19|20)\d{2}$`)
	hrefYear  = regexp.MustCompile(`as_ylo=((?:19|20)\d{2})`)
	pairBlock = regexp.MustCompile(`\[\s*\[\s*["']?\d{4}["']?\s*,\s*["']?[\d,]+["']?\s*\](?:\s*,\s*\[\s*["']?\d{4}["']?\s*,\s*["']?[\d,]+["']?\s*\])*\s*\]`)
	pairItem  = regexp.MustCompile(`\[\s*["']?(\d{4})["']?\s*,\s*["']?([\d,]+)["']?\s*\]`)
	digitRun  = regexp.MustCompile(`\d[\d,]*`)
)

// Strategy produces a candidate series from a detail page. Returning an empty
// slice means "no data from this strategy"; errors are treated the same way
// by Extract.
type Strategy func(page browse.Page) ([]types.TrendPoint, error)

// Extractor runs the strategy cascade against detail pages.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor builds the default cascade: in-page data variable, chart
// internal data table, raw script-text scan, rendered bar reconstruction.
func NewExtractor() *Extractor {
	return &Extractor{
		strategies: []Strategy{
			fromPageVariable,
			fromChartTable,
			fromScriptScan,
			fromRenderedBars,
		},
	}
}

// Extract returns the first valid non-empty series the cascade produces,
// sorted ascending by year. A nil result means no trend data was found.
func (e *Extractor) Extract(page browse.Page) []types.TrendPoint {
	for _, strategy := range e.strategies {
		series, err := strategy(page)
		if err != nil || len(series) == 0 {
			continue
		}
		series = validate(series)
		if len(series) == 0 {
			continue
		}
		sort.Slice(series, func(i, j int) bool { return series[i].Year < series[j].Year })
		return series
	}
	return nil
}

// validate drops items with a non-4-digit year or a negative count. Invalid
// items are removed, never substituted with zero.
func validate(series []types.TrendPoint) []types.TrendPoint {
	out := series[:0]
	for _, p := range series {
		if !yearRe.MatchString(p.Year) || p.Citations < 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// fromPageVariable reads a structured data variable the detail view exposes
// in page context. Static backends cannot evaluate scripts, so this strategy
// degrades to "no data" there.
func fromPageVariable(page browse.Page) ([]types.TrendPoint, error) {
	raw, err := page.Evaluate(`(() => {
		if (typeof window.citationHistogram !== 'undefined') return window.citationHistogram;
		return null;
	})()`)
	if err != nil {
		return nil, err
	}
	return fromEvaluated(raw), nil
}

// fromChartTable pulls the internal data table of an embedded chart object.
func fromChartTable(page browse.Page) ([]types.TrendPoint, error) {
	raw, err := page.Evaluate(`(() => {
		const chart = window.gsChart || window.chart;
		if (!chart || !chart.data || !chart.data.rows) return null;
		return chart.data.rows.map(r => [String(r[0]), r[1]]);
	})()`)
	if err != nil {
		return nil, err
	}
	return fromEvaluated(raw), nil
}

// fromScriptScan searches the raw document text for an embedded array literal
// of [year, count] pairs.
func fromScriptScan(page browse.Page) ([]types.TrendPoint, error) {
	content, err := page.Content()
	if err != nil {
		return nil, err
	}
	block := pairBlock.FindString(content)
	if block == "" {
		return nil, nil
	}
	return ParsePairs(block), nil
}

// fromRenderedBars reconstructs the series from rendered year labels and bar
// links. Each bar's year comes from its link parameter when present, or from
// the label at the same position.
func fromRenderedBars(page browse.Page) ([]types.TrendPoint, error) {
	years := page.QueryAll("span.gsc_oci_g_t")
	bars := page.QueryAll("a.gsc_oci_g_a")
	if len(bars) == 0 {
		return nil, nil
	}

	var series []types.TrendPoint
	for i, bar := range bars {
		countText := bar.Text()
		if countText == "" {
			if inner := barCount(bar); inner != "" {
				countText = inner
			}
		}
		count, ok := parseCount(countText)
		if !ok {
			continue
		}

		year := ""
		if href, found := bar.Attribute("href"); found {
			if m := hrefYear.FindStringSubmatch(href); m != nil {
				year = m[1]
			}
		}
		if year == "" && i < len(years) {
			year = years[i].Text()
		}
		series = append(series, types.TrendPoint{Year: year, Citations: count})
	}
	return series, nil
}

func barCount(bar browse.Element) string {
	html, err := bar.HTML()
	if err != nil {
		return ""
	}
	return digitRun.FindString(html)
}

// fromEvaluated converts a JSON-decoded script result into a series. The
// expected shape is an array of [year, count] pairs; anything else yields nil.
func fromEvaluated(raw any) []types.TrendPoint {
	rows, ok := raw.([]any)
	if !ok {
		return nil
	}
	var series []types.TrendPoint
	for _, row := range rows {
		pair, ok := row.([]any)
		if !ok || len(pair) != 2 {
			continue
		}
		year := stringValue(pair[0])
		count, ok := countValue(pair[1])
		if !ok {
			continue
		}
		series = append(series, types.TrendPoint{Year: year, Citations: count})
	}
	return series
}

// ParsePairs parses an array literal of [year, count] pairs with a narrow
// grammar: years are 4-digit runs, counts are digit runs with optional
// thousands separators, quoting is optional. Items outside the grammar are
// skipped.
func ParsePairs(literal string) []types.TrendPoint {
	var series []types.TrendPoint
	for _, m := range pairItem.FindAllStringSubmatch(literal, -1) {
		count, ok := parseCount(m[2])
		if !ok {
			continue
		}
		series = append(series, types.TrendPoint{Year: m[1], Citations: count})
	}
	return series
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.Itoa(int(t))
	default:
		return ""
	}
}

func countValue(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 || t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	case string:
		return parseCount(t)
	default:
		return 0, false
	}
}

func parseCount(text string) (int, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
