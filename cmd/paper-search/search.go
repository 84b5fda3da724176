// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-search/internal/search"
	"github.com/pdiddy/paper-search/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search academic providers for papers",
	Long: `Search queries the selected academic providers (PubMed, arXiv, Crossref,
Semantic Scholar) concurrently for papers matching a free-text query.
Results are deduplicated across providers by DOI or normalized title,
ranked, and printed with per-provider status.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "free-text query (required unless --show is given)")
	searchCmd.Flags().String("providers", "", "comma-separated provider subset (default: all)")
	searchCmd.Flags().Int("max-results", 20, "maximum number of results to return")
	searchCmd.Flags().Int("year-from", 0, "earliest publication year")
	searchCmd.Flags().Int("year-to", 0, "latest publication year")
	searchCmd.Flags().String("source-type", "all", "restrict to journal, preprint, or conference")
	searchCmd.Flags().String("sort", "relevance", "sort key: relevance, year, citations, or credibility")
	searchCmd.Flags().Bool("abstracts", false, "include abstracts in the output")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as CSL-YAML")
	searchCmd.Flags().String("save", "", "save the query and results to a YAML file")
	searchCmd.Flags().String("show", "", "print a previously saved query file instead of searching")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("show"); path != "" {
		return showQueryFile(cmd, path)
	}

	query, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg := searchConfig()
	agg := search.NewDefaultAggregator(cfg, os.Stderr)
	cache := search.NewCache(agg, cfg.CacheTTL)

	results, diagnostics, err := cache.GetOrCompute(context.Background(), query)
	if err != nil {
		return err
	}
	out := search.Output{Results: results, Diagnostics: diagnostics}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := search.WriteQueryFile(path, query, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved query file: %s\n", path)
	}

	return formatOutput(cmd, out)
}

func queryFromFlags(cmd *cobra.Command) (search.Query, error) {
	text, _ := cmd.Flags().GetString("query")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	sourceType, _ := cmd.Flags().GetString("source-type")
	sortBy, _ := cmd.Flags().GetString("sort")
	abstracts, _ := cmd.Flags().GetBool("abstracts")

	key, ok := search.ParseSortKey(sortBy)
	if !ok {
		return search.Query{}, fmt.Errorf("invalid --sort %q: use relevance, year, citations, or credibility", sortBy)
	}

	providers, err := parseProviders(cmd)
	if err != nil {
		return search.Query{}, err
	}

	return search.Query{
		Text:             strings.TrimSpace(text),
		Providers:        providers,
		MaxResults:       maxResults,
		YearFrom:         yearFrom,
		YearTo:           yearTo,
		SourceType:       sourceType,
		SortBy:           key,
		IncludeAbstracts: abstracts,
	}, nil
}

func parseProviders(cmd *cobra.Command) ([]types.Provider, error) {
	raw, _ := cmd.Flags().GetString("providers")
	if raw == "" {
		return append([]types.Provider(nil), types.AllProviders...), nil
	}

	var providers []types.Provider
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, ok := types.ParseProvider(name)
		if !ok {
			return nil, fmt.Errorf("unknown provider %q: use pubmed, arxiv, crossref, or semantic_scholar", name)
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// searchConfig assembles the search configuration from viper plus key files
// loaded from .secrets/ (explicit config values win over key files).
func searchConfig() types.SearchConfig {
	cfg := types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("search.timeout"),
			UserAgent: viper.GetString("search.user_agent"),
		},
		MaxResults:            viper.GetInt("search.max_results"),
		ProviderTimeout:       viper.GetDuration("search.provider_timeout"),
		CacheTTL:              viper.GetDuration("search.cache_ttl"),
		NCBIAPIKey:            loadedSecrets.Get("ncbi-api-key", viper.GetString("search.ncbi_api_key")),
		SemanticScholarAPIKey: loadedSecrets.Get("semantic-scholar-api-key", viper.GetString("search.semantic_scholar_api_key")),
		CrossrefMailto:        loadedSecrets.Get("crossref-mailto", viper.GetString("search.crossref_mailto")),
	}
	return cfg.WithDefaults()
}

func formatOutput(cmd *cobra.Command, out search.Output) error {
	if csl, _ := cmd.Flags().GetBool("csl"); csl {
		return search.FormatCSL(out, os.Stdout)
	}
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return search.FormatJSON(out, os.Stdout)
	}
	search.FormatTable(out, os.Stdout)
	return nil
}

func showQueryFile(cmd *cobra.Command, path string) error {
	qf, err := search.ReadQueryFile(path)
	if err != nil {
		return err
	}

	diagnostics := make(types.Diagnostics, len(qf.Summary.Diagnostics))
	for p, status := range qf.Summary.Diagnostics {
		diagnostics[types.Provider(p)] = types.ProviderStatus(status)
	}
	out := search.Output{Results: qf.Results, Diagnostics: diagnostics}

	fmt.Fprintf(os.Stderr, "Saved %s: %q (%d results)\n",
		qf.Summary.Timestamp.Format(time.RFC3339), qf.Query.Text, qf.Summary.Total)
	return formatOutput(cmd, out)
}
