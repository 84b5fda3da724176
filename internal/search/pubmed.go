// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-search/internal/ratelimit"
	"github.com/pdiddy/paper-search/pkg/types"
)

// NCBI E-utilities endpoints. Declared as vars so tests can substitute
// httptest servers.
var (
	pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// PubMedBackend queries NCBI E-utilities in two steps: esearch returns
// matching PMIDs as JSON, efetch returns the article records as XML.
// PubMed indexes curated peer-reviewed biomedical literature, so records
// carry the highest provider baseline.
type PubMedBackend struct {
	Client  *http.Client
	Limiter *ratelimit.Limiter
	// APIKey raises the NCBI rate limit when set.
	APIKey string
}

// Provider returns the backend identifier.
func (b *PubMedBackend) Provider() types.Provider { return types.ProviderPubMed }

// Search queries PubMed and returns normalized papers.
func (b *PubMedBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Paper, error) {
	ids, err := b.searchIDs(ctx, query, cfg)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return b.fetchArticles(ctx, ids, cfg)
}

// searchIDs runs the esearch step and returns matching PMIDs.
func (b *PubMedBackend) searchIDs(ctx context.Context, query Query, cfg types.SearchConfig) ([]string, error) {
	if err := reserve(ctx, b.Limiter, types.ProviderPubMed); err != nil {
		return nil, err
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query.Text},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(query.MaxResults)},
		"sort":    {"relevance"},
	}
	if b.APIKey != "" {
		params.Set("api_key", b.APIKey)
	}
	if query.YearFrom != 0 || query.YearTo != 0 {
		params.Set("datetype", "pdat")
		if query.YearFrom != 0 {
			params.Set("mindate", strconv.Itoa(query.YearFrom))
		}
		if query.YearTo != 0 {
			params.Set("maxdate", strconv.Itoa(query.YearTo))
		}
	}

	body, err := b.get(ctx, pubmedSearchBase+"?"+params.Encode(), cfg)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sr pubmedSearchResponse
	if err := json.NewDecoder(body).Decode(&sr); err != nil {
		return nil, &ProviderError{
			Provider: types.ProviderPubMed, Kind: ErrParse,
			Err: fmt.Errorf("parsing esearch response: %w", err),
		}
	}
	return sr.Result.IDList, nil
}

// fetchArticles runs the efetch step and normalizes the article XML.
func (b *PubMedBackend) fetchArticles(ctx context.Context, ids []string, cfg types.SearchConfig) ([]types.Paper, error) {
	if err := reserve(ctx, b.Limiter, types.ProviderPubMed); err != nil {
		return nil, err
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	if b.APIKey != "" {
		params.Set("api_key", b.APIKey)
	}

	body, err := b.get(ctx, pubmedFetchBase+"?"+params.Encode(), cfg)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var set pubmedArticleSet
	if err := xml.NewDecoder(body).Decode(&set); err != nil {
		return nil, &ProviderError{
			Provider: types.ProviderPubMed, Kind: ErrParse,
			Err: fmt.Errorf("parsing efetch response: %w", err),
		}
	}

	var papers []types.Paper
	for _, art := range set.Articles {
		p := normalizePubmedArticle(art)
		if p.Title == "" || len(p.Authors) == 0 {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func (b *PubMedBackend) get(ctx context.Context, reqURL string, cfg types.SearchConfig) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &ProviderError{Provider: types.ProviderPubMed, Kind: ErrHTTP, Err: err}
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, providerErr(types.ProviderPubMed, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &ProviderError{
			Provider: types.ProviderPubMed, Kind: ErrHTTP,
			Err: fmt.Errorf("E-utilities returned HTTP %d", resp.StatusCode),
		}
	}
	return resp.Body, nil
}

func normalizePubmedArticle(art pubmedArticle) types.Paper {
	cit := art.MedlineCitation
	p := types.Paper{
		Identifier:       cit.PMID,
		Title:            strings.TrimSpace(cit.Article.Title),
		Abstract:         strings.TrimSpace(strings.Join(cit.Article.Abstract.Sections, "\n")),
		Venue:            cit.Article.Journal.Title,
		URL:              "https://pubmed.ncbi.nlm.nih.gov/" + cit.PMID + "/",
		SourceType:       types.SourceJournal,
		Provider:         types.ProviderPubMed,
		CredibilityScore: pubmedPrior,
		PeerReviewed:     true,
	}

	p.Year = pubmedYear(cit.Article.Journal.Issue.PubDate)

	for _, a := range cit.Article.Authors {
		switch {
		case a.CollectiveName != "":
			p.Authors = append(p.Authors, a.CollectiveName)
		case a.LastName != "":
			name := strings.TrimSpace(a.ForeName + " " + a.LastName)
			p.Authors = append(p.Authors, name)
		}
	}

	for _, el := range cit.Article.ELocationIDs {
		if el.Type == "doi" && el.Value != "" {
			p.DOI = strings.TrimSpace(el.Value)
			break
		}
	}
	return p
}

// pubmedYear extracts a year from a PubDate, falling back to the leading
// token of MedlineDate forms like "2023 Jan-Feb".
func pubmedYear(d pubmedPubDate) string {
	if d.Year != "" {
		return d.Year
	}
	fields := strings.Fields(d.MedlineDate)
	if len(fields) > 0 {
		if _, err := strconv.Atoi(fields[0]); err == nil {
			return fields[0]
		}
	}
	return ""
}

// esearch JSON structures.
type pubmedSearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// efetch XML structures (PubmedArticleSet subset).
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    string `xml:"ArticleTitle"`
			Abstract struct {
				Sections []string `xml:"AbstractText"`
			} `xml:"Abstract"`
			Journal struct {
				Title string `xml:"Title"`
				Issue struct {
					PubDate pubmedPubDate `xml:"PubDate"`
				} `xml:"JournalIssue"`
			} `xml:"Journal"`
			Authors []struct {
				LastName       string `xml:"LastName"`
				ForeName       string `xml:"ForeName"`
				CollectiveName string `xml:"CollectiveName"`
			} `xml:"AuthorList>Author"`
			ELocationIDs []struct {
				Type  string `xml:"EIdType,attr"`
				Value string `xml:",chardata"`
			} `xml:"ELocationID"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
}

type pubmedPubDate struct {
	Year        string `xml:"Year"`
	MedlineDate string `xml:"MedlineDate"`
}
