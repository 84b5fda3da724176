// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdiddy/paper-search/pkg/types"
)

func TestToCSLItemJournalArticle(t *testing.T) {
	p := types.Paper{
		Identifier: "10.1038/nature14539",
		Title:      "Deep learning",
		Authors:    []string{"Yann LeCun", "Yoshua Bengio"},
		Venue:      "Nature",
		Abstract:   "Deep learning allows computational models.",
		Year:       "2015",
		SourceType: types.SourceJournal,
		DOI:        "10.1038/nature14539",
		URL:        "https://doi.org/10.1038/nature14539",
	}

	item := toCSLItem(p)

	if item.Type != "article-journal" {
		t.Errorf("Type = %q, want %q", item.Type, "article-journal")
	}
	if item.ID != "10.1038/nature14539" {
		t.Errorf("ID = %q, want DOI", item.ID)
	}
	if item.ContainerTitle != "Nature" {
		t.Errorf("ContainerTitle = %q, want %q", item.ContainerTitle, "Nature")
	}
	if len(item.Author) != 2 {
		t.Fatalf("len(Author) = %d, want 2", len(item.Author))
	}
	if item.Author[0].Given != "Yann" || item.Author[0].Family != "LeCun" {
		t.Errorf("Author[0] = %+v, want given/family split", item.Author[0])
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2015 {
		t.Errorf("Issued year should be 2015")
	}
}

func TestToCSLItemPreprint(t *testing.T) {
	p := types.Paper{
		Identifier: "1706.03762",
		Title:      "Attention Is All You Need",
		Authors:    []string{"Ashish Vaswani"},
		Year:       "2017",
		SourceType: types.SourcePreprint,
	}

	item := toCSLItem(p)

	if item.Type != "article" {
		t.Errorf("Type = %q, want %q", item.Type, "article")
	}
	if item.ContainerTitle != "" {
		t.Errorf("ContainerTitle should be empty for preprints, got %q", item.ContainerTitle)
	}
	if item.DOI != "" {
		t.Errorf("DOI should be empty, got %q", item.DOI)
	}
}

func TestToCSLItemConference(t *testing.T) {
	p := types.Paper{
		Identifier: "10.5555/conf",
		Title:      "A Conference Paper",
		Authors:    []string{"Pat Lee"},
		Venue:      "NeurIPS",
		Year:       "2022",
		SourceType: types.SourceConference,
	}

	if item := toCSLItem(p); item.Type != "paper-conference" {
		t.Errorf("Type = %q, want %q", item.Type, "paper-conference")
	}
}

func TestToCSLItemUnparseableYear(t *testing.T) {
	p := types.Paper{
		Identifier: "x",
		Title:      "Undated",
		Authors:    []string{"A B"},
		SourceType: types.SourceJournal,
	}

	if item := toCSLItem(p); item.Issued != nil {
		t.Errorf("Issued = %+v, want nil for missing year", item.Issued)
	}
}

func TestFormatCSLMixedSources(t *testing.T) {
	out := Output{
		Results: []types.Paper{
			{
				Identifier: "10.1038/nature14539",
				Title:      "Deep learning",
				Authors:    []string{"Yann LeCun"},
				Venue:      "Nature",
				Year:       "2015",
				SourceType: types.SourceJournal,
				DOI:        "10.1038/nature14539",
			},
			{
				Identifier: "1706.03762",
				Title:      "Attention Is All You Need",
				Authors:    []string{"Ashish Vaswani"},
				Year:       "2017",
				SourceType: types.SourcePreprint,
			},
		},
	}

	var buf bytes.Buffer
	if err := FormatCSL(out, &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}

	s := buf.String()

	if !strings.Contains(s, "type: article-journal") {
		t.Error("CSL output should contain type: article-journal for the journal paper")
	}
	if !strings.Contains(s, "type: article") {
		t.Error("CSL output should contain type: article for the preprint")
	}
	if !strings.Contains(s, "DOI: 10.1038/nature14539") {
		t.Error("CSL output should carry the DOI field")
	}

	// The preprint has no DOI or container-title.
	if strings.Count(s, "DOI:") != 1 {
		t.Errorf("expected exactly 1 DOI field, got %d", strings.Count(s, "DOI:"))
	}
	if strings.Count(s, "container-title:") != 1 {
		t.Errorf("expected exactly 1 container-title field, got %d", strings.Count(s, "container-title:"))
	}
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want CSLName
	}{
		{"given and family", "Yann LeCun", CSLName{Given: "Yann", Family: "LeCun"}},
		{"multi-part given", "Juan Carlos Ortiz", CSLName{Given: "Juan Carlos", Family: "Ortiz"}},
		{"single token", "Aristotle", CSLName{Literal: "Aristotle"}},
		{"surrounding space", "  Grace Hopper  ", CSLName{Given: "Grace", Family: "Hopper"}},
		{"empty", "", CSLName{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseAuthorName(tt.in); got != tt.want {
				t.Errorf("parseAuthorName(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
