// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-search aggregator.
package types

// Provider identifies one external academic search source.
type Provider string

const (
	ProviderPubMed          Provider = "pubmed"
	ProviderArxiv           Provider = "arxiv"
	ProviderCrossref        Provider = "crossref"
	ProviderSemanticScholar Provider = "semantic_scholar"
)

// AllProviders lists every supported provider in canonical order.
var AllProviders = []Provider{
	ProviderPubMed,
	ProviderArxiv,
	ProviderCrossref,
	ProviderSemanticScholar,
}

// ParseProvider maps a user-supplied name to a Provider.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderPubMed, ProviderArxiv, ProviderCrossref, ProviderSemanticScholar:
		return Provider(s), true
	}
	return "", false
}

// SourceType classifies the publication venue of a paper.
type SourceType string

const (
	SourceJournal    SourceType = "journal"
	SourcePreprint   SourceType = "preprint"
	SourceConference SourceType = "conference"
)

// Paper is the normalized search result every provider adapter emits.
// Adapters drop candidates missing a title or author list before returning,
// so downstream code may assume both are populated.
type Paper struct {
	// Identifier is the provider-native ID (PMID, arXiv ID, DOI, or paper ID).
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in provider order.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue is the journal, conference, or archive name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Year is the publication year, or empty when the provider omits it.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Abstract is the paper abstract, when requested and available.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// URL is the canonical link to the paper.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// SourceType is journal, preprint, or conference.
	SourceType SourceType `json:"source_type" yaml:"source_type"`

	// Provider identifies which adapter produced this record.
	Provider Provider `json:"provider" yaml:"provider"`

	// DOI is the Digital Object Identifier, when known. It is the strongest
	// deduplication key across providers.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// CitationCount is the number of citing works, nil when unknown.
	CitationCount *int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// CredibilityScore is a heuristic trust estimate in [0, 1].
	CredibilityScore float64 `json:"credibility_score" yaml:"credibility_score"`

	// PeerReviewed reports whether the record passed peer review.
	PeerReviewed bool `json:"peer_reviewed" yaml:"peer_reviewed"`
}

// Citations returns the citation count, treating unknown as zero.
func (p Paper) Citations() int {
	if p.CitationCount == nil {
		return 0
	}
	return *p.CitationCount
}

// ProviderStatus is the per-provider outcome of one aggregation.
type ProviderStatus string

const (
	StatusOK     ProviderStatus = "ok"
	StatusFailed ProviderStatus = "failed"
)

// Diagnostics maps each queried provider to its outcome.
type Diagnostics map[Provider]ProviderStatus

// Clone returns an independent copy of the diagnostics map.
func (d Diagnostics) Clone() Diagnostics {
	out := make(Diagnostics, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
