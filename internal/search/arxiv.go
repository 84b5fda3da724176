// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-search/internal/ratelimit"
	"github.com/pdiddy/paper-search/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivBackend queries the arXiv Atom API. Everything it returns is an
// unreviewed preprint with the arXiv baseline credibility.
type ArxivBackend struct {
	Client  *http.Client
	Limiter *ratelimit.Limiter
}

// Provider returns the backend identifier.
func (b *ArxivBackend) Provider() types.Provider { return types.ProviderArxiv }

// Search queries the arXiv API and returns normalized papers.
func (b *ArxivBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error) {
	if err := reserve(ctx, b.Limiter, types.ProviderArxiv); err != nil {
		return nil, err
	}

	terms := strings.Fields(query.Text)
	params := url.Values{
		"search_query": {"all:" + strings.Join(terms, "+")},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(query.MaxResults)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Provider: types.ProviderArxiv, Kind: ErrHTTP, Err: err}
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, providerErr(types.ProviderArxiv, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: types.ProviderArxiv, Kind: ErrHTTP,
			Err: fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode),
		}
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, &ProviderError{
			Provider: types.ProviderArxiv, Kind: ErrParse,
			Err: fmt.Errorf("parsing arXiv response: %w", err),
		}
	}

	var papers []types.Paper
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}

		p := types.Paper{
			Identifier:       arxivID,
			Title:            strings.Join(strings.Fields(entry.Title), " "),
			Abstract:         strings.TrimSpace(entry.Summary),
			Venue:            "arXiv",
			URL:              "https://arxiv.org/abs/" + arxivID,
			SourceType:       types.SourcePreprint,
			Provider:         types.ProviderArxiv,
			DOI:              strings.TrimSpace(entry.DOI),
			CredibilityScore: arxivPrior,
			PeerReviewed:     false,
		}

		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			p.Year = strconv.Itoa(t.Year())
		}

		if p.Title == "" || len(p.Authors) == 0 {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	DOI       string        `xml:"doi"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
