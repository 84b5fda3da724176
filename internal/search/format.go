// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Output bundles one aggregation's results with its per-provider status.
type Output struct {
	Results     []types.Paper     `json:"results" yaml:"results"`
	Diagnostics types.Diagnostics `json:"diagnostics" yaml:"diagnostics"`
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		formatDiagnostics(out.Diagnostics, w)
		return
	}

	fmt.Fprintf(w, "%-4s  %-56s  %-20s  %-4s  %-5s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Cites", "Cred", "Provider")
	fmt.Fprintln(w, strings.Repeat("-", 112))

	for i, p := range out.Results {
		title := p.Title
		if len(title) > 56 {
			title = title[:53] + "..."
		}
		cites := ""
		if p.CitationCount != nil {
			cites = fmt.Sprintf("%d", *p.CitationCount)
		}
		fmt.Fprintf(w, "%-4d  %-56s  %-20s  %-4s  %-5s  %-6.2f  %s\n",
			i+1, title, formatAuthors(p.Authors), p.Year, cites, p.CredibilityScore, p.Provider)
	}

	fmt.Fprintf(w, "\n%d results\n", len(out.Results))
	formatDiagnostics(out.Diagnostics, w)
}

func formatDiagnostics(d types.Diagnostics, w io.Writer) {
	if len(d) == 0 {
		return
	}
	providers := make([]string, 0, len(d))
	for p := range d {
		providers = append(providers, string(p))
	}
	sort.Strings(providers)

	parts := make([]string, len(providers))
	for i, p := range providers {
		parts[i] = fmt.Sprintf("%s=%s", p, d[types.Provider(p)])
	}
	fmt.Fprintf(w, "providers: %s\n", strings.Join(parts, " "))
}

// FormatJSON writes results and diagnostics as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
