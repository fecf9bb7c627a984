// Package openalex drives the OpenAlex scholarly-works API: raw search,
// candidate normalization, hierarchical keyword collection and PDF
// acquisition for retrieved works.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	applogger "github.com/scribelab/paperforge/internal/logger"
)

const defaultBaseURL = "https://api.openalex.org"

// userAgent identifies this service to the OpenAlex polite pool.
const userAgent = "paperforge/1.0"

// Client queries the OpenAlex /works endpoint.
type Client struct {
	baseURL    string
	email      string
	httpClient *http.Client
	logger     *applogger.AppLogger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient substitutes the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client. baseURL may be empty to use the public API;
// email joins the polite pool when set.
func NewClient(baseURL, email string, logger *applogger.AppLogger, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		email:      email,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchWorks runs one full-text search and returns one page of works.
func (c *Client) SearchWorks(ctx context.Context, query string, page, perPage int) ([]Work, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 25
	}
	if perPage > 200 {
		perPage = 200
	}

	params := url.Values{
		"search":   {query},
		"per-page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
	}
	if c.email != "" {
		params.Set("mailto", c.email)
	}

	reqURL := c.baseURL + "/works?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openalex request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openalex returned HTTP %d", resp.StatusCode)
	}

	var decoded worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("parsing openalex response: %w", err)
	}

	c.logger.Debug("openalex search completed", "query", query, "results", len(decoded.Results))
	return decoded.Results, nil
}

// OpenAlex API JSON structures.
type worksResponse struct {
	Meta    meta   `json:"meta"`
	Results []Work `json:"results"`
}

type meta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

// Work is one raw OpenAlex work record.
type Work struct {
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	DOI                   string           `json:"doi"`
	PublicationYear       int              `json:"publication_year"`
	Abstract              string           `json:"abstract"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	Authorships           []Authorship     `json:"authorships"`
	Concepts              []Concept        `json:"concepts"`
	CitedByCount          int              `json:"cited_by_count"`
	PrimaryLocation       *Location        `json:"primary_location"`
	Locations             []Location       `json:"locations"`
	OpenAccess            OpenAccess       `json:"open_access"`
	Biblio                Biblio           `json:"biblio"`
}

type Authorship struct {
	Author Author `json:"author"`
}

type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type Concept struct {
	DisplayName string `json:"display_name"`
}

type Location struct {
	LandingPageURL string  `json:"landing_page_url"`
	PdfURL         string  `json:"pdf_url"`
	Source         *Source `json:"source"`
}

type Source struct {
	DisplayName string `json:"display_name"`
}

type OpenAccess struct {
	IsOA   bool   `json:"is_oa"`
	OAURL  string `json:"oa_url"`
	Status string `json:"oa_status"`
}

type Biblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}
