// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Rank stably sorts papers in place by the given key. Relevance preserves
// input order; year and citations sort descending with missing values last
// (missing citation counts count as zero); credibility sorts descending by
// score. Stability means records tied on the key keep their relative order
// from the deduplicator's output.
func Rank(papers []types.Paper, key SortKey) {
	switch key {
	case SortYear:
		sort.SliceStable(papers, func(i, j int) bool {
			yi, oki := numericYear(papers[i])
			yj, okj := numericYear(papers[j])
			if oki != okj {
				return oki // papers with a year sort before those without
			}
			return yi > yj
		})
	case SortCitations:
		sort.SliceStable(papers, func(i, j int) bool {
			return papers[i].Citations() > papers[j].Citations()
		})
	case SortCredibility:
		sort.SliceStable(papers, func(i, j int) bool {
			return papers[i].CredibilityScore > papers[j].CredibilityScore
		})
	}
	// SortRelevance: input order already reflects provider relevance.
}

// numericYear parses the paper's year field. The second return is false when
// the year is absent or not numeric.
func numericYear(p types.Paper) (int, bool) {
	s := strings.TrimSpace(p.Year)
	if s == "" {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}
