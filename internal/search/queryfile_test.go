// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"path/filepath"
	"testing"

	"github.com/pdiddy/paper-search/pkg/types"
)

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")

	query := Query{
		Text:       "CRISPR gene editing",
		Providers:  []types.Provider{types.ProviderPubMed, types.ProviderCrossref},
		MaxResults: 5,
		YearFrom:   2020,
		SortBy:     SortCitations,
	}
	out := Output{
		Results: []types.Paper{
			{
				Identifier:       "10.1234/crispr",
				Title:            "CRISPR Advances",
				Authors:          []string{"Jennifer Doudna"},
				Year:             "2021",
				CitationCount:    intPtr(500),
				CredibilityScore: 0.95,
				Provider:         types.ProviderPubMed,
				DOI:              "10.1234/crispr",
				SourceType:       types.SourceJournal,
				PeerReviewed:     true,
			},
		},
		Diagnostics: types.Diagnostics{
			types.ProviderPubMed:   types.StatusOK,
			types.ProviderCrossref: types.StatusFailed,
		},
	}

	if err := WriteQueryFile(path, query, out); err != nil {
		t.Fatalf("WriteQueryFile: %v", err)
	}

	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatalf("ReadQueryFile: %v", err)
	}

	if qf.Query.Text != "CRISPR gene editing" {
		t.Errorf("Text = %q", qf.Query.Text)
	}
	if len(qf.Query.Providers) != 2 || qf.Query.Providers[0] != "pubmed" {
		t.Errorf("Providers = %v", qf.Query.Providers)
	}
	if qf.Query.MaxResults != 5 || qf.Query.YearFrom != 2020 || qf.Query.SortBy != "citations" {
		t.Errorf("params = %+v", qf.Query)
	}
	if qf.Summary.Total != 1 {
		t.Errorf("Total = %d, want 1", qf.Summary.Total)
	}
	if qf.Summary.Diagnostics["crossref"] != "failed" {
		t.Errorf("Diagnostics = %v", qf.Summary.Diagnostics)
	}
	if qf.Summary.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	if len(qf.Results) != 1 {
		t.Fatalf("len(Results) = %d, want 1", len(qf.Results))
	}
	p := qf.Results[0]
	if p.Title != "CRISPR Advances" || p.DOI != "10.1234/crispr" {
		t.Errorf("result = %+v", p)
	}
	if p.CitationCount == nil || *p.CitationCount != 500 {
		t.Errorf("CitationCount = %v, want 500", p.CitationCount)
	}
	if !p.PeerReviewed || p.SourceType != types.SourceJournal {
		t.Errorf("classification = %v/%s", p.PeerReviewed, p.SourceType)
	}
}

func TestWriteQueryFileAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")

	query := Query{Text: "defaults", Providers: []types.Provider{types.ProviderArxiv}}
	if err := WriteQueryFile(path, query, Output{}); err != nil {
		t.Fatalf("WriteQueryFile: %v", err)
	}

	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatalf("ReadQueryFile: %v", err)
	}
	if qf.Query.MaxResults != types.DefaultMaxResults {
		t.Errorf("MaxResults = %d, want default %d", qf.Query.MaxResults, types.DefaultMaxResults)
	}
	if qf.Query.SortBy != string(SortRelevance) {
		t.Errorf("SortBy = %q, want relevance", qf.Query.SortBy)
	}
}

func TestReadQueryFileMissing(t *testing.T) {
	if _, err := ReadQueryFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestQueryParamsToQuery(t *testing.T) {
	p := QueryParams{
		Text:       "q",
		Providers:  []string{"pubmed", "semantic_scholar"},
		MaxResults: 10,
		SortBy:     "year",
	}
	q, err := p.ToQuery()
	if err != nil {
		t.Fatalf("ToQuery: %v", err)
	}
	if len(q.Providers) != 2 || q.Providers[1] != types.ProviderSemanticScholar {
		t.Errorf("Providers = %v", q.Providers)
	}
	if q.SortBy != SortYear {
		t.Errorf("SortBy = %q", q.SortBy)
	}
}

func TestQueryParamsToQueryInvalidProvider(t *testing.T) {
	p := QueryParams{Text: "q", Providers: []string{"scopus"}}
	if _, err := p.ToQuery(); err == nil {
		t.Error("expected error for unknown provider")
	}
}
