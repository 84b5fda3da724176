// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"
	"unicode"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Deduplicate merges papers that describe the same underlying work. The
// identity key is the DOI verbatim when present, otherwise the normalized
// title. When candidates collide, the one with the higher credibility score
// survives (ties keep the first seen); output order preserves the first-seen
// sequence. Returns the merged list and the number of records removed.
func Deduplicate(papers []types.Paper) ([]types.Paper, int) {
	seen := make(map[string]int) // dedup key → index in merged
	var merged []types.Paper
	removed := 0

	for _, p := range papers {
		key := dedupKey(p)
		if key == "" {
			merged = append(merged, p)
			continue
		}
		if idx, ok := seen[key]; ok {
			removed++
			if p.CredibilityScore > merged[idx].CredibilityScore {
				merged[idx] = p
			}
			continue
		}
		seen[key] = len(merged)
		merged = append(merged, p)
	}
	return merged, removed
}

// dedupKey returns the identity key for a paper: DOI first, normalized
// title second. The "doi:"/"title:" prefixes keep the two key spaces from
// colliding.
func dedupKey(p types.Paper) string {
	if p.DOI != "" {
		return "doi:" + p.DOI
	}
	if t := normalizeTitle(p.Title); t != "" {
		return "title:" + t
	}
	return ""
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the
// title with whitespace collapsed to single spaces.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
