// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Cache memoizes aggregation results for a short window. Entries are keyed
// by the canonical form of the query and options, expire lazily on lookup,
// and are replaced atomically as a whole. Concurrent lookups for the same
// key share one in-flight computation.
type Cache struct {
	agg *Aggregator
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group

	// now is substituted by tests to drive expiry.
	now func() time.Time
}

type cacheEntry struct {
	papers      []types.Paper
	diagnostics types.Diagnostics
	created     time.Time
}

// NewCache wraps agg with a TTL memoization layer. A non-positive ttl uses
// the default (5 minutes).
func NewCache(agg *Aggregator, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = types.DefaultCacheTTL
	}
	return &Cache{
		agg:     agg,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// GetOrCompute returns the cached result for the query when a fresh entry
// exists; otherwise it runs the aggregator and stores the outcome. Callers
// receive an independent copy either way, so mutating a returned slice never
// corrupts the cache.
func (c *Cache) GetOrCompute(ctx context.Context, query Query) ([]types.Paper, types.Diagnostics, error) {
	if err := query.Validate(); err != nil {
		return nil, nil, err
	}
	query = query.withDefaults()
	key := cacheKey(query)

	if entry, ok := c.lookup(key); ok {
		return copyPapers(entry.papers), entry.diagnostics.Clone(), nil
	}

	type runOutput struct {
		papers      []types.Paper
		diagnostics types.Diagnostics
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		papers, diagnostics, err := c.agg.Run(ctx, query)
		if err != nil {
			return nil, err
		}
		c.store(key, papers, diagnostics)
		return runOutput{papers: papers, diagnostics: diagnostics}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	out := v.(runOutput)
	return copyPapers(out.papers), out.diagnostics.Clone(), nil
}

// lookup returns a live entry for key, discarding it when expired.
func (c *Cache) lookup(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return cacheEntry{}, false
	}
	if c.now().Sub(entry.created) >= c.ttl {
		delete(c.entries, key)
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *Cache) store(key string, papers []types.Paper, diagnostics types.Diagnostics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		papers:      papers,
		diagnostics: diagnostics,
		created:     c.now(),
	}
}

// cacheKey hashes the canonical form of the query: lowercased and trimmed
// text, sorted provider set, and every numeric/boolean option. Two queries
// that differ only in text case, surrounding whitespace, or provider order
// share a key.
func cacheKey(query Query) string {
	providers := make([]string, len(query.Providers))
	for i, p := range query.Providers {
		providers[i] = string(p)
	}
	sort.Strings(providers)

	canonical := fmt.Sprintf("q=%s|p=%s|n=%d|from=%d|to=%d|type=%s|sort=%s|abs=%t",
		strings.ToLower(strings.TrimSpace(query.Text)),
		strings.Join(providers, ","),
		query.MaxResults,
		query.YearFrom,
		query.YearTo,
		canonicalSourceType(query.SourceType),
		query.SortBy,
		query.IncludeAbstracts,
	)

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func canonicalSourceType(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

// copyPapers returns a deep enough copy of papers that callers can mutate
// freely: the slice, each author list, and each citation count are cloned.
func copyPapers(papers []types.Paper) []types.Paper {
	if papers == nil {
		return []types.Paper{}
	}
	out := make([]types.Paper, len(papers))
	copy(out, papers)
	for i := range out {
		if out[i].Authors != nil {
			authors := make([]string, len(out[i].Authors))
			copy(authors, out[i].Authors)
			out[i].Authors = authors
		}
		if out[i].CitationCount != nil {
			cites := *out[i].CitationCount
			out[i].CitationCount = &cites
		}
	}
	return out
}
