package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search aggregator.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results to return (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// ProviderTimeout bounds each individual provider call, including any
	// rate-limit wait (default 10s).
	ProviderTimeout time.Duration `json:"provider_timeout" yaml:"provider_timeout"`

	// CacheTTL is how long an aggregation result stays valid (default 5m).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// NCBIAPIKey is an optional NCBI E-utilities key for higher rate limits.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// CrossrefMailto is the contact email sent to Crossref for polite pool access.
	CrossrefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty"`
}

// Defaults used when a SearchConfig field is unset.
const (
	DefaultMaxResults      = 20
	DefaultProviderTimeout = 10 * time.Second
	DefaultCacheTTL        = 5 * time.Minute
)

// WithDefaults returns a copy of cfg with unset fields filled in.
func (c SearchConfig) WithDefaults() SearchConfig {
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = DefaultProviderTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultProviderTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = "paper-search/0.1"
	}
	return c
}
