// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries academic APIs and returns unified, deduplicated,
// ranked results. Each provider (PubMed, arXiv, Crossref, Semantic Scholar)
// implements the Backend interface; the Aggregator fans a query out to the
// selected backends concurrently, tolerates per-provider failure, and merges
// what comes back.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/pdiddy/paper-search/internal/ratelimit"
	"github.com/pdiddy/paper-search/pkg/types"
)

// newHTTPClient returns the HTTP client shared by the production backends.
func newHTTPClient(cfg types.SearchConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// SortKey selects the ranking criterion for merged results.
type SortKey string

const (
	SortRelevance   SortKey = "relevance"
	SortYear        SortKey = "year"
	SortCitations   SortKey = "citations"
	SortCredibility SortKey = "credibility"
)

// ParseSortKey maps a user-supplied name to a SortKey.
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case SortRelevance, SortYear, SortCitations, SortCredibility:
		return SortKey(s), true
	case "":
		return SortRelevance, true
	}
	return "", false
}

// Query holds the search parameters.
type Query struct {
	// Text is the free-text query. Must be non-empty.
	Text string

	// Providers is the subset of providers to consult. Must be non-empty.
	Providers []types.Provider

	// MaxResults caps the merged result list. Zero means the default (20);
	// negative values are rejected.
	MaxResults int

	// YearFrom and YearTo bound the publication year, zero meaning unset.
	YearFrom int
	YearTo   int

	// SourceType restricts results to one venue class. Empty or "all"
	// applies no restriction.
	SourceType string

	// SortBy selects the ranking criterion. Empty means relevance.
	SortBy SortKey

	// IncludeAbstracts controls whether abstracts appear in the output.
	IncludeAbstracts bool
}

// ValidationError reports an invalid query. It is returned synchronously,
// before any provider is contacted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query: %s %s", e.Field, e.Reason)
}

// Validate checks the query against the entry-point contract.
func (q Query) Validate() error {
	if q.Text == "" {
		return &ValidationError{Field: "query", Reason: "is empty"}
	}
	if len(q.Providers) == 0 {
		return &ValidationError{Field: "providers", Reason: "is empty"}
	}
	for _, p := range q.Providers {
		if _, ok := types.ParseProvider(string(p)); !ok {
			return &ValidationError{Field: "providers", Reason: fmt.Sprintf("contains unknown provider %q", p)}
		}
	}
	if q.MaxResults < 0 {
		return &ValidationError{Field: "max_results", Reason: "must be positive"}
	}
	if _, ok := ParseSortKey(string(q.SortBy)); !ok {
		return &ValidationError{Field: "sort_by", Reason: fmt.Sprintf("unknown key %q", q.SortBy)}
	}
	switch q.SourceType {
	case "", "all", string(types.SourceJournal), string(types.SourcePreprint), string(types.SourceConference):
	default:
		return &ValidationError{Field: "source_type", Reason: fmt.Sprintf("unknown type %q", q.SourceType)}
	}
	return nil
}

// withDefaults fills unset optional fields. MaxResults zero becomes 20;
// explicit invalid values were already rejected by Validate.
func (q Query) withDefaults() Query {
	if q.MaxResults == 0 {
		q.MaxResults = types.DefaultMaxResults
	}
	if q.SortBy == "" {
		q.SortBy = SortRelevance
	}
	return q
}

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	ErrTimeout ErrorKind = "timeout"
	ErrHTTP    ErrorKind = "http"
	ErrParse   ErrorKind = "parse"
)

// ProviderError is a contained per-provider failure. It never escapes the
// Aggregator: the provider is marked failed in diagnostics and the search
// proceeds with the remaining providers.
type ProviderError struct {
	Provider types.Provider
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Backend searches a single academic API. Each backend isolates its
// provider's wire format: rate-limit reservation, request, parsing, and
// normalization all stay behind this interface.
type Backend interface {
	Provider() types.Provider
	Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error)
}

// Aggregator fans queries out to backends, joins their results, and merges
// them into one ranked list. One Aggregator (with its rate limiter) is
// constructed per process and shared by all callers.
type Aggregator struct {
	cfg      types.SearchConfig
	backends map[types.Provider]Backend
	warn     io.Writer
}

// NewAggregator builds an Aggregator over the given backends. Warnings about
// failed providers are written to warn (io.Discard is acceptable).
func NewAggregator(cfg types.SearchConfig, backends []Backend, warn io.Writer) *Aggregator {
	byProvider := make(map[types.Provider]Backend, len(backends))
	for _, b := range backends {
		byProvider[b.Provider()] = b
	}
	if warn == nil {
		warn = io.Discard
	}
	return &Aggregator{cfg: cfg.WithDefaults(), backends: byProvider, warn: warn}
}

// NewDefaultAggregator wires the four production backends behind a shared
// sliding-window rate limiter.
func NewDefaultAggregator(cfg types.SearchConfig, warn io.Writer) *Aggregator {
	cfg = cfg.WithDefaults()
	limiter := ratelimit.New(ratelimit.DefaultLimits)
	client := newHTTPClient(cfg)
	backends := []Backend{
		&PubMedBackend{Client: client, Limiter: limiter, APIKey: cfg.NCBIAPIKey},
		&ArxivBackend{Client: client, Limiter: limiter},
		&CrossrefBackend{Client: client, Limiter: limiter, Mailto: cfg.CrossrefMailto},
		&SemanticScholarBackend{Client: client, Limiter: limiter, APIKey: cfg.SemanticScholarAPIKey},
	}
	return NewAggregator(cfg, backends, warn)
}

// Run executes one aggregation: validate, fan out to the selected providers,
// join, deduplicate, rank, truncate. A provider that fails contributes an
// empty list and a "failed" diagnostics entry; it never aborts the search.
// All providers failing still returns successfully with an empty list.
func (a *Aggregator) Run(ctx context.Context, query Query) ([]types.Paper, types.Diagnostics, error) {
	if err := query.Validate(); err != nil {
		return nil, nil, err
	}
	query = query.withDefaults()

	type backendResult struct {
		provider types.Provider
		papers   []types.Paper
		err      error
	}

	ch := make(chan backendResult, len(query.Providers))
	var wg sync.WaitGroup

	for _, p := range query.Providers {
		b, ok := a.backends[p]
		if !ok {
			ch <- backendResult{provider: p, err: &ProviderError{
				Provider: p, Kind: ErrHTTP, Err: fmt.Errorf("no backend configured"),
			}}
			continue
		}
		wg.Add(1)
		go func(p types.Provider, b Backend) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, a.cfg.ProviderTimeout)
			defer cancel()
			papers, err := b.Search(callCtx, query, a.cfg)
			ch <- backendResult{provider: p, papers: papers, err: err}
		}(p, b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	diagnostics := make(types.Diagnostics, len(query.Providers))
	var all []types.Paper
	for br := range ch {
		if br.err != nil {
			diagnostics[br.provider] = types.StatusFailed
			fmt.Fprintf(a.warn, "warning: provider %s failed: %v\n", br.provider, br.err)
			continue
		}
		diagnostics[br.provider] = types.StatusOK
		all = append(all, br.papers...)
	}

	merged, _ := Deduplicate(filterPapers(all, query))
	Rank(merged, query.SortBy)

	if len(merged) > query.MaxResults {
		merged = merged[:query.MaxResults]
	}
	if !query.IncludeAbstracts {
		for i := range merged {
			merged[i].Abstract = ""
		}
	}

	return merged, diagnostics, nil
}

// filterPapers applies the year-range and source-type filters uniformly,
// regardless of how much filtering each provider API supported natively.
func filterPapers(papers []types.Paper, query Query) []types.Paper {
	if query.YearFrom == 0 && query.YearTo == 0 && (query.SourceType == "" || query.SourceType == "all") {
		return papers
	}
	filtered := papers[:0]
	for _, p := range papers {
		if query.SourceType != "" && query.SourceType != "all" && string(p.SourceType) != query.SourceType {
			continue
		}
		if query.YearFrom != 0 || query.YearTo != 0 {
			year, ok := numericYear(p)
			if !ok {
				continue
			}
			if query.YearFrom != 0 && year < query.YearFrom {
				continue
			}
			if query.YearTo != 0 && year > query.YearTo {
				continue
			}
		}
		filtered = append(filtered, p)
	}
	return filtered
}
