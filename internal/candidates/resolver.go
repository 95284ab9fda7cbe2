// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package candidates

import (
	"sort"

	"github.com/pdiddy/scholar-harvest/pkg/types"
)

// SelectBest returns the single best candidate under the priority policy, or
// false when cands is empty. The lowest score wins, ties broken by URL; a
// profile/listing-page candidate is chosen only when it is the sole candidate
// present, so a "non-answer" link never shadows a real one.
func SelectBest(cands []types.Candidate) (types.Candidate, bool) {
	sorted := make([]types.Candidate, 0, len(cands))
	for _, c := range cands {
		if c.URL != "" {
			sorted = append(sorted, c)
		}
	}
	if len(sorted) == 0 {
		return types.Candidate{}, false
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score < sorted[j].Score
		}
		return sorted[i].URL < sorted[j].URL
	})
	for _, c := range sorted {
		if !IsProfileLink(c.URL) {
			return c, true
		}
	}
	return sorted[0], true
}
