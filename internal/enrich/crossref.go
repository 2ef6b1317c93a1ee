package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sethgrid/pester"
	"golang.org/x/time/rate"

	"github.com/matsen/refmark/internal/ident"
)

const (
	// CrossrefBaseURL is the Crossref works API base URL.
	CrossrefBaseURL = "https://api.crossref.org/works"

	// CrossrefRateLimit follows the polite-pool guidance of 1 request per
	// second for batch tools.
	CrossrefRateLimit = 1.0

	// DefaultRequestTimeout bounds a single catalog request.
	DefaultRequestTimeout = 30 * time.Second
)

// CrossrefClient resolves DOIs against the Crossref works API. Requests are
// rate limited and retried with exponential backoff on transient failures; a
// 404 is a definitive miss, not a retry.
type CrossrefClient struct {
	httpClient *pester.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// CrossrefOption configures a CrossrefClient.
type CrossrefOption func(*CrossrefClient)

// WithCrossrefBaseURL sets a custom base URL (for testing).
func WithCrossrefBaseURL(base string) CrossrefOption {
	return func(c *CrossrefClient) {
		c.baseURL = base
	}
}

// WithMailto sets the polite-pool contact address sent with every request.
func WithMailto(mailto string) CrossrefOption {
	return func(c *CrossrefClient) {
		c.mailto = mailto
	}
}

// NewCrossrefClient creates a Crossref works client.
func NewCrossrefClient(opts ...CrossrefOption) *CrossrefClient {
	hc := pester.New()
	hc.Timeout = DefaultRequestTimeout
	hc.MaxRetries = 3
	hc.Backoff = pester.ExponentialBackoff
	hc.RetryOnHTTP429 = true

	c := &CrossrefClient{
		httpClient: hc,
		limiter:    rate.NewLimiter(rate.Limit(CrossrefRateLimit), 1),
		baseURL:    CrossrefBaseURL,
	}

	if mailto := os.Getenv("CROSSREF_MAILTO"); mailto != "" {
		c.mailto = mailto
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// crossrefResponse is the subset of the works payload the engine consumes.
type crossrefResponse struct {
	Message struct {
		Title          []string `json:"title"`
		ContainerTitle []string `json:"container-title"`
		DOI            string   `json:"DOI"`
		Author         []struct {
			Given  string `json:"given"`
			Family string `json:"family"`
		} `json:"author"`
		Issued struct {
			DateParts [][]int `json:"date-parts"`
		} `json:"issued"`
	} `json:"message"`
}

// Enrich implements Enricher for DOI identifiers. Other identifier kinds are
// out of this catalog's scope and return "not found" as a transient miss so
// the caller can try another catalog.
func (c *CrossrefClient) Enrich(ctx context.Context, id ident.Identifier) (*Metadata, error) {
	if id.Kind != ident.KindDOI {
		return nil, fmt.Errorf("crossref: unsupported identifier kind %s", id.Kind)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("crossref: rate limiter: %w", err)
	}

	reqURL := c.baseURL + "/" + url.PathEscape(id.Value)
	if c.mailto != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("crossref: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crossref: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("crossref: DOI %s: %w", id.Value, ErrIdentifierNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crossref: unexpected status %d for DOI %s", resp.StatusCode, id.Value)
	}

	var payload crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("crossref: decoding response: %w", err)
	}

	meta := &Metadata{DOI: payload.Message.DOI}
	if len(payload.Message.Title) > 0 {
		meta.Title = payload.Message.Title[0]
	}
	if len(payload.Message.ContainerTitle) > 0 {
		meta.Venue = payload.Message.ContainerTitle[0]
	}
	for _, a := range payload.Message.Author {
		name := a.Family
		if a.Given != "" {
			name = a.Given + " " + a.Family
		}
		meta.Authors = append(meta.Authors, name)
	}
	if parts := payload.Message.Issued.DateParts; len(parts) > 0 && len(parts[0]) > 0 {
		meta.Year = parts[0][0]
		if len(parts[0]) > 1 {
			meta.Month = parts[0][1]
		}
	}

	return meta, nil
}
