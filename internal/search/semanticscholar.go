// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/internal/ratelimit"
	"github.com/pdiddy/paper-search/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,year,venue,citationCount,publicationTypes,url"

// SemanticScholarBackend queries the Semantic Scholar citation graph.
// Unlike the other backends, its records carry citation counts, so the
// credibility score is computed from metadata rather than a fixed prior.
type SemanticScholarBackend struct {
	Client  *http.Client
	Limiter *ratelimit.Limiter
	APIKey  string

	// now supplies the reference time for the recency bonus; tests pin it.
	now func() time.Time
}

// Provider returns the backend identifier.
func (b *SemanticScholarBackend) Provider() types.Provider { return types.ProviderSemanticScholar }

// Search queries the Semantic Scholar API and returns normalized papers.
func (b *SemanticScholarBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error) {
	if err := reserve(ctx, b.Limiter, types.ProviderSemanticScholar); err != nil {
		return nil, err
	}

	params := url.Values{
		"query":  {query.Text},
		"limit":  {strconv.Itoa(query.MaxResults)},
		"fields": {semanticFields},
	}
	if yr := semanticYearRange(query.YearFrom, query.YearTo); yr != "" {
		params.Set("year", yr)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Provider: types.ProviderSemanticScholar, Kind: ErrHTTP, Err: err}
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, providerErr(types.ProviderSemanticScholar, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: types.ProviderSemanticScholar, Kind: ErrHTTP,
			Err: fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode),
		}
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &ProviderError{
			Provider: types.ProviderSemanticScholar, Kind: ErrParse,
			Err: fmt.Errorf("parsing Semantic Scholar response: %w", err),
		}
	}

	now := time.Now
	if b.now != nil {
		now = b.now
	}

	var papers []types.Paper
	for _, sp := range sr.Data {
		p := normalizeSemanticPaper(sp)
		if p.Title == "" || len(p.Authors) == 0 {
			continue
		}
		p.CredibilityScore = ScoreCredibility(p, now())
		papers = append(papers, p)
	}
	return papers, nil
}

func normalizeSemanticPaper(sp semanticPaper) types.Paper {
	p := types.Paper{
		Identifier: sp.PaperID,
		Title:      sp.Title,
		Abstract:   sp.Abstract,
		Venue:      sp.Venue,
		URL:        sp.URL,
		Provider:   types.ProviderSemanticScholar,
		DOI:        sp.ExternalIDs.DOI,
	}

	if sp.ExternalIDs.DOI != "" {
		p.Identifier = sp.ExternalIDs.DOI
	} else if sp.ExternalIDs.ArXiv != "" {
		p.Identifier = sp.ExternalIDs.ArXiv
	}

	for _, a := range sp.Authors {
		if a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
	}

	if sp.Year > 0 {
		p.Year = strconv.Itoa(sp.Year)
	}
	if sp.CitationCount != nil && *sp.CitationCount >= 0 {
		cites := *sp.CitationCount
		p.CitationCount = &cites
	}

	p.SourceType, p.PeerReviewed = classifySemanticTypes(sp.PublicationTypes, sp.Venue, sp.ExternalIDs.ArXiv)
	return p
}

// classifySemanticTypes maps Semantic Scholar publication types onto the
// normalized source classes. A record known only from arXiv with no venue is
// a preprint.
func classifySemanticTypes(pubTypes []string, venue, arxivID string) (types.SourceType, bool) {
	for _, t := range pubTypes {
		if t == "Conference" {
			return types.SourceConference, true
		}
	}
	if venue == "" && arxivID != "" {
		return types.SourcePreprint, false
	}
	if venue == "" {
		return types.SourcePreprint, false
	}
	return types.SourceJournal, true
}

// semanticYearRange returns a Semantic Scholar year filter (e.g. "2020-2023").
func semanticYearRange(from, to int) string {
	switch {
	case from != 0 && to != 0:
		return fmt.Sprintf("%d-%d", from, to)
	case from != 0:
		return fmt.Sprintf("%d-", from)
	case to != 0:
		return fmt.Sprintf("-%d", to)
	default:
		return ""
	}
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID          string              `json:"paperId"`
	Title            string              `json:"title"`
	Abstract         string              `json:"abstract"`
	Venue            string              `json:"venue"`
	URL              string              `json:"url"`
	Year             int                 `json:"year"`
	CitationCount    *int                `json:"citationCount"`
	PublicationTypes []string            `json:"publicationTypes"`
	Authors          []semanticAuthor    `json:"authors"`
	ExternalIDs      semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
