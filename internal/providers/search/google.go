// Package search wraps the Google Custom Search API for product image lookup
// and competitor research.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wishcdp/internal/domain"
)

const googleDefaultTimeout = 10 * time.Second

// Result is one web search hit used by the enrichment stage.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}

// Options configures the Google Custom Search client.
type Options struct {
	APIKey     string
	EngineID   string
	BaseURL    string
	HTTPClient *http.Client
}

// GoogleClient talks to the Custom Search JSON API.
type GoogleClient struct {
	apiKey   string
	engineID string
	baseURL  string
	client   *http.Client
}

type googleSearchResponse struct {
	Items []Result `json:"items"`
}

// NewGoogleClient validates the options and builds a client.
func NewGoogleClient(opts Options) (*GoogleClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("google search api key is required")
	}
	if opts.EngineID == "" {
		return nil, errors.New("google search engine id is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/customsearch/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: googleDefaultTimeout}
	}
	return &GoogleClient{
		apiKey:   opts.APIKey,
		engineID: opts.EngineID,
		baseURL:  baseURL,
		client:   client,
	}, nil
}

// FindImage searches for a product photo matching title/brand/category and
// returns the first hit, or the empty string when nothing qualifies.
func (g *GoogleClient) FindImage(ctx context.Context, title, brand string, category domain.Category) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", errors.New("product title is required")
	}

	items, err := g.search(ctx, buildQuery(title, brand, category), 3, true)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", nil
	}
	return items[0].Link, nil
}

// Search runs a web search used for competitor enrichment.
func (g *GoogleClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is required")
	}
	if limit <= 0 || limit > 10 {
		limit = 10
	}
	return g.search(ctx, query, limit, false)
}

func (g *GoogleClient) search(ctx context.Context, query string, limit int, images bool) ([]Result, error) {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))
	params.Set("safe", "active")
	if images {
		params.Set("searchType", "image")
		params.Set("imgType", "photo")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: custom search call: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: custom search status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var decoded googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", domain.ErrProviderFailure, err)
	}
	return decoded.Items, nil
}

// buildQuery joins the available product descriptors into one query string.
func buildQuery(title, brand string, category domain.Category) string {
	parts := []string{strings.TrimSpace(title)}
	if brand = strings.TrimSpace(brand); brand != "" {
		parts = append(parts, brand)
	}
	if category != "" {
		parts = append(parts, string(category))
	}
	return strings.Join(parts, " ")
}
