// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"
	"time"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Per-provider credibility baselines. PubMed indexes curated, peer-reviewed
// biomedical literature; arXiv hosts unreviewed preprints; Crossref registers
// published works of mixed kinds. Semantic Scholar records are scored from
// metadata instead (ScoreCredibility).
const (
	pubmedPrior   = 0.9
	arxivPrior    = 0.7
	crossrefPrior = 0.85
)

// topTierVenues is a small curated list of venue names that earn a
// credibility bonus. Matching is case-insensitive on the normalized venue.
var topTierVenues = []string{
	"nature",
	"science",
	"cell",
	"the lancet",
	"new england journal of medicine",
	"jama",
	"neurips",
	"icml",
	"iclr",
	"cvpr",
	"acl",
}

// ScoreCredibility computes a heuristic [0,1] trust score from paper
// metadata: citation count, recency, and venue. It is a pure function with
// no I/O; now supplies the reference time for the recency bonus.
func ScoreCredibility(p types.Paper, now time.Time) float64 {
	score := 0.7

	switch cites := p.Citations(); {
	case cites > 100:
		score += 0.2
	case cites > 50:
		score += 0.15
	case cites > 10:
		score += 0.1
	}

	if year, ok := numericYear(p); ok && now.Year()-year <= 3 {
		score += 0.05
	}

	if isTopTierVenue(p.Venue) {
		score += 0.15
	}

	return clampScore(score)
}

func isTopTierVenue(venue string) bool {
	v := strings.ToLower(strings.TrimSpace(venue))
	if v == "" {
		return false
	}
	for _, top := range topTierVenues {
		if v == top || strings.Contains(v, top+" ") || strings.HasSuffix(v, " "+top) {
			return true
		}
	}
	return false
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
