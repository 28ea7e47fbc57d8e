// Package newsapi fetches articles from the NewsAPI v2 REST service.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"newsfuse/internal/content"
)

const defaultBaseURL = "https://newsapi.org"

// The API caps page_size at 100.
const maxPageSize = 100

// NewsAPI truncates the content field and appends a marker like
// "... [+1234 chars]".
var truncationMarker = regexp.MustCompile(`\s*\[\+\d+ chars\]$`)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL overrides the API base URL (useful for testing).
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client talks to NewsAPI. An empty API key leaves the client unavailable;
// the aggregator checks Available before calling.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
	logger     *slog.Logger
}

// NewClient creates a NewsAPI client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether the client holds an API key.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// Type identifies this client in aggregated results.
func (c *Client) Type() content.SourceType {
	return content.SourceNews
}

// Search queries the /v2/everything endpoint and returns canonical items,
// newest first as the API sorts them.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]content.Item, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(clampPageSize(limit)))

	resp, err := c.get(ctx, "/v2/everything", params)
	if err != nil {
		return nil, err
	}
	return c.canonicalize(resp.Articles, "newsapi:"+query), nil
}

// Headlines queries /v2/top-headlines for a category and country.
func (c *Client) Headlines(ctx context.Context, category, country string, limit int) ([]content.Item, error) {
	if country == "" {
		country = "us"
	}
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	params.Set("country", country)
	params.Set("pageSize", strconv.Itoa(clampPageSize(limit)))

	resp, err := c.get(ctx, "/v2/top-headlines", params)
	if err != nil {
		return nil, err
	}
	return c.canonicalize(resp.Articles, "newsapi"), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*searchResponse, error) {
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned HTTP %d for %s", httpResp.StatusCode, path)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", resp.Code, resp.Message)
	}
	return &resp, nil
}

// canonicalize converts wire articles to content items, dropping entries
// without a title or URL.
func (c *Client) canonicalize(articles []wireArticle, sourceLabel string) []content.Item {
	items := make([]content.Item, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" || a.URL == "" {
			continue
		}

		source := sourceLabel
		if a.Source.Name != "" {
			source = a.Source.Name
		}

		items = append(items, content.Item{
			Title:       a.Title,
			Body:        pickBody(a),
			URL:         a.URL,
			Source:      source,
			SourceType:  content.SourceNews,
			PublishedAt: parsePublishedAt(a.PublishedAt),
			Author:      a.Author,
		})
	}
	if c.logger != nil {
		c.logger.Debug("newsapi canonicalized", "in", len(articles), "out", len(items))
	}
	return items
}

// pickBody prefers the description over the truncated content field.
func pickBody(a wireArticle) string {
	if a.Description != "" {
		return a.Description
	}
	return cleanContent(a.Content)
}

// cleanContent strips the truncation markers NewsAPI appends to content.
func cleanContent(text string) string {
	text = truncationMarker.ReplaceAllString(text, "")
	text = strings.TrimSuffix(text, "...")
	return strings.TrimSpace(text)
}

func parsePublishedAt(value string) time.Time {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Now().UTC()
}

func clampPageSize(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
