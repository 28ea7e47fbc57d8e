// Package redditapi fetches discussion posts from reddit's public listing
// endpoints. No OAuth: the public JSON interface only needs a descriptive
// User-Agent.
package redditapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newsfuse/internal/content"
)

const defaultBaseURL = "https://www.reddit.com"

// Body text from selfposts is capped to keep items newsletter-sized.
const maxBodyRunes = 500

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

// Client fetches posts from configured subreddits. A client without a
// User-Agent is unavailable; reddit rejects anonymous agents.
type Client struct {
	userAgent  string
	subreddits []string
	baseURL    string
	httpClient HTTPClient
	logger     *slog.Logger
}

// NewClient creates a reddit client searching the given subreddits.
func NewClient(userAgent string, subreddits []string, opts ...ClientOption) *Client {
	c := &Client{
		userAgent:  userAgent,
		subreddits: subreddits,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether the client can talk to reddit.
func (c *Client) Available() bool {
	return c.userAgent != "" && len(c.subreddits) > 0
}

// Type identifies this client in aggregated results.
func (c *Client) Type() content.SourceType {
	return content.SourceReddit
}

// Search queries each configured subreddit and merges the results, splitting
// the limit across subreddits the way the per-subreddit quota rounds up.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]content.Item, error) {
	// An unconfigured client answers empty rather than erroring, the same
	// degradation the aggregator applies to unavailable sources.
	if len(c.subreddits) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	perSub := limit/len(c.subreddits) + 1

	var items []content.Item
	var lastErr error
	for _, sub := range c.subreddits {
		posts, err := c.searchSubreddit(ctx, sub, query, perSub)
		if err != nil {
			// One failing subreddit must not sink the others.
			if c.logger != nil {
				c.logger.Warn("subreddit search failed", "subreddit", sub, "error", err)
			}
			lastErr = err
			continue
		}
		items = append(items, posts...)
	}

	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Hot returns the current hot listing for one subreddit.
func (c *Client) Hot(ctx context.Context, subreddit string, limit int) ([]content.Item, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", c.baseURL, subreddit, clampLimit(limit))
	return c.fetchListing(ctx, endpoint)
}

func (c *Client) searchSubreddit(ctx context.Context, subreddit, query string, limit int) ([]content.Item, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("restrict_sr", "1")
	params.Set("sort", "relevance")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	endpoint := fmt.Sprintf("%s/r/%s/search.json?%s", c.baseURL, subreddit, params.Encode())
	return c.fetchListing(ctx, endpoint)
}

func (c *Client) fetchListing(ctx context.Context, endpoint string) ([]content.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned HTTP %d", resp.StatusCode)
	}

	var listing listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	items := make([]content.Item, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		item, ok := canonicalize(child.Data)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// canonicalize converts a wire post to a content item. Selfposts carry their
// own text as body; link posts carry the target URL reference.
func canonicalize(p wirePost) (content.Item, bool) {
	if p.Title == "" && p.URL == "" {
		return content.Item{}, false
	}

	body := ""
	if p.IsSelf {
		body = p.Selftext
	}
	if runes := []rune(body); len(runes) > maxBodyRunes {
		body = string(runes[:maxBodyRunes])
	}

	author := p.Author
	if author == "" {
		author = "[deleted]"
	}

	itemURL := p.URL
	if itemURL == "" && p.Permalink != "" {
		itemURL = "https://reddit.com" + p.Permalink
	}

	return content.Item{
		Title:       p.Title,
		Body:        body,
		URL:         itemURL,
		Source:      "reddit/r/" + p.Subreddit,
		SourceType:  content.SourceReddit,
		PublishedAt: time.Unix(int64(p.CreatedUTC), 0).UTC(),
		Author:      author,
		Score:       p.Score,
		Engagement:  p.NumComments,
	}, true
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
