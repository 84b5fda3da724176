// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-search/internal/ratelimit"
	"github.com/pdiddy/paper-search/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossrefBackend queries the Crossref scholarly-metadata registry.
type CrossrefBackend struct {
	Client  *http.Client
	Limiter *ratelimit.Limiter
	// Mailto is sent as the mailto parameter for polite pool access.
	Mailto string
}

// Provider returns the backend identifier.
func (b *CrossrefBackend) Provider() types.Provider { return types.ProviderCrossref }

// Search queries the Crossref API and returns normalized papers.
func (b *CrossrefBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error) {
	if err := reserve(ctx, b.Limiter, types.ProviderCrossref); err != nil {
		return nil, err
	}

	params := url.Values{
		"query": {query.Text},
		"rows":  {strconv.Itoa(query.MaxResults)},
	}
	if b.Mailto != "" {
		params.Set("mailto", b.Mailto)
	}

	var filters []string
	if query.YearFrom != 0 {
		filters = append(filters, fmt.Sprintf("from-pub-date:%d-01-01", query.YearFrom))
	}
	if query.YearTo != 0 {
		filters = append(filters, fmt.Sprintf("until-pub-date:%d-12-31", query.YearTo))
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Provider: types.ProviderCrossref, Kind: ErrHTTP, Err: err}
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, providerErr(types.ProviderCrossref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: types.ProviderCrossref, Kind: ErrHTTP,
			Err: fmt.Errorf("Crossref API returned HTTP %d", resp.StatusCode),
		}
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, &ProviderError{
			Provider: types.ProviderCrossref, Kind: ErrParse,
			Err: fmt.Errorf("parsing Crossref response: %w", err),
		}
	}

	var papers []types.Paper
	for _, item := range cr.Message.Items {
		p := normalizeCrossrefWork(item)
		if p.Title == "" || len(p.Authors) == 0 {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func normalizeCrossrefWork(item crossrefWork) types.Paper {
	p := types.Paper{
		Identifier:       item.DOI,
		DOI:              item.DOI,
		URL:              item.URL,
		Provider:         types.ProviderCrossref,
		CredibilityScore: crossrefPrior,
	}

	if len(item.Title) > 0 {
		p.Title = strings.TrimSpace(item.Title[0])
	}
	if len(item.ContainerTitle) > 0 {
		p.Venue = item.ContainerTitle[0]
	}
	if item.Abstract != "" {
		p.Abstract = stripJATSMarkup(item.Abstract)
	}
	if item.CitedByCount >= 0 {
		cites := item.CitedByCount
		p.CitationCount = &cites
	}

	for _, a := range item.Authors {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name != "" {
			p.Authors = append(p.Authors, name)
		}
	}

	if parts := item.Issued.DateParts; len(parts) > 0 && len(parts[0]) > 0 && parts[0][0] > 0 {
		p.Year = strconv.Itoa(parts[0][0])
	}

	p.SourceType, p.PeerReviewed = classifyCrossrefType(item.Type)
	return p
}

// classifyCrossrefType maps Crossref work types onto the normalized source
// classes. Posted content (preprint servers registered with Crossref) is not
// peer reviewed; everything else Crossref registers is treated as published.
func classifyCrossrefType(t string) (types.SourceType, bool) {
	switch t {
	case "proceedings-article":
		return types.SourceConference, true
	case "posted-content":
		return types.SourcePreprint, false
	default:
		return types.SourceJournal, true
	}
}

// stripJATSMarkup removes the JATS XML tags Crossref embeds in abstracts.
func stripJATSMarkup(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI            string           `json:"DOI"`
	Type           string           `json:"type"`
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Abstract       string           `json:"abstract"`
	URL            string           `json:"URL"`
	CitedByCount   int              `json:"is-referenced-by-count"`
	Authors        []crossrefAuthor `json:"author"`
	Issued         crossrefDate     `json:"issued"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}
