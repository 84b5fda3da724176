// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/pkg/types"
)

// QueryFile is the on-disk representation of a search and its results.
// A search can be saved to a file and shown again later without re-querying
// the provider APIs.
type QueryFile struct {
	Query   QueryParams   `yaml:"query"`
	Results []types.Paper `yaml:"results"`
	Summary QuerySummary  `yaml:"summary"`
}

// QueryParams stores the query in a serializable form.
type QueryParams struct {
	Text             string   `yaml:"text"`
	Providers        []string `yaml:"providers"`
	MaxResults       int      `yaml:"max_results"`
	YearFrom         int      `yaml:"year_from,omitempty"`
	YearTo           int      `yaml:"year_to,omitempty"`
	SourceType       string   `yaml:"source_type,omitempty"`
	SortBy           string   `yaml:"sort_by"`
	IncludeAbstracts bool     `yaml:"include_abstracts"`
}

// QuerySummary stores result statistics, provider status, and a timestamp.
type QuerySummary struct {
	Total       int               `yaml:"total"`
	Diagnostics map[string]string `yaml:"diagnostics"`
	Timestamp   time.Time         `yaml:"timestamp"`
}

// WriteQueryFile saves a query and its output to a YAML file.
func WriteQueryFile(path string, query Query, out Output) error {
	query = query.withDefaults()

	providers := make([]string, len(query.Providers))
	for i, p := range query.Providers {
		providers[i] = string(p)
	}

	diags := make(map[string]string, len(out.Diagnostics))
	for p, status := range out.Diagnostics {
		diags[string(p)] = string(status)
	}

	qf := QueryFile{
		Query: QueryParams{
			Text:             query.Text,
			Providers:        providers,
			MaxResults:       query.MaxResults,
			YearFrom:         query.YearFrom,
			YearTo:           query.YearTo,
			SourceType:       query.SourceType,
			SortBy:           string(query.SortBy),
			IncludeAbstracts: query.IncludeAbstracts,
		},
		Results: out.Results,
		Summary: QuerySummary{
			Total:       len(out.Results),
			Diagnostics: diags,
			Timestamp:   time.Now(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ToQuery converts stored QueryParams back into a Query.
func (p QueryParams) ToQuery() (Query, error) {
	q := Query{
		Text:             p.Text,
		MaxResults:       p.MaxResults,
		YearFrom:         p.YearFrom,
		YearTo:           p.YearTo,
		SourceType:       p.SourceType,
		SortBy:           SortKey(p.SortBy),
		IncludeAbstracts: p.IncludeAbstracts,
	}
	for _, name := range p.Providers {
		provider, ok := types.ParseProvider(name)
		if !ok {
			return q, fmt.Errorf("invalid provider %q in query file", name)
		}
		q.Providers = append(q.Providers, provider)
	}
	return q, nil
}
