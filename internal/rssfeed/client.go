// Package rssfeed fetches and canonicalizes RSS/Atom feeds.
package rssfeed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"newsfuse/internal/content"
)

// Entry bodies are clipped after markup stripping; feeds routinely embed
// whole articles.
const maxBodyRunes = 1000

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

// WithLogger attaches a logger for fetch diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client fetches a configured set of feeds and filters entries by query
// keywords. Feed URLs come from configuration; the Search contract treats
// the whole set as one source.
type Client struct {
	feedURLs   []string
	httpClient HTTPClient
	parser     *gofeed.Parser
	logger     *slog.Logger
}

// NewClient creates a feed client over the given feed URLs.
func NewClient(feedURLs []string, opts ...ClientOption) *Client {
	c := &Client{
		feedURLs:   feedURLs,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		parser:     gofeed.NewParser(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether any feed URLs are configured.
func (c *Client) Available() bool {
	return len(c.feedURLs) > 0
}

// Type identifies this client in aggregated results.
func (c *Client) Type() content.SourceType {
	return content.SourceRSS
}

// Search fetches every configured feed and returns entries mentioning the
// query in title, body, or category. A feed that fails to fetch or parse is
// skipped; Search only errors when every feed failed.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]content.Item, error) {
	perFeed := limit
	if perFeed <= 0 {
		perFeed = 10
	}

	byFeed, err := c.FetchFeeds(ctx, c.feedURLs, perFeed)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matched []content.Item
	for _, items := range byFeed {
		for _, it := range items {
			if matchesQuery(it, needle) {
				matched = append(matched, it)
			}
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// FetchFeeds fetches several feeds, keyed by feed title. Individual feed
// failures are logged and skipped; the error is non-nil only when no feed
// produced anything and at least one failed.
func (c *Client) FetchFeeds(ctx context.Context, urls []string, perFeed int) (map[string][]content.Item, error) {
	results := make(map[string][]content.Item)
	var lastErr error

	for _, feedURL := range urls {
		name, items, err := c.fetchFeed(ctx, feedURL, perFeed)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("feed fetch failed", "url", feedURL, "error", err)
			}
			lastErr = err
			continue
		}
		results[name] = append(results[name], items...)
	}

	if len(results) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return results, nil
}

// Recent fetches the configured feeds (or urls when given) and returns
// entries published within the last hoursBack hours, newest first.
func (c *Client) Recent(ctx context.Context, urls []string, hoursBack, perFeed int) ([]content.Item, error) {
	if len(urls) == 0 {
		urls = c.feedURLs
	}
	byFeed, err := c.FetchFeeds(ctx, urls, perFeed)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-time.Duration(hoursBack) * time.Hour)
	var recent []content.Item
	for _, items := range byFeed {
		recent = append(recent, content.FilterSince(items, cutoff)...)
	}
	content.SortByScore(recent) // all scores zero: effectively newest first
	return recent, nil
}

func (c *Client) fetchFeed(ctx context.Context, feedURL string, perFeed int) (string, []content.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "newsfuse feed reader/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("feed returned HTTP %d for %s", resp.StatusCode, feedURL)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	name := feed.Title
	if name == "" {
		name = feedURL
	}

	entries := feed.Items
	if perFeed > 0 && len(entries) > perFeed {
		entries = entries[:perFeed]
	}

	items := make([]content.Item, 0, len(entries))
	for _, entry := range entries {
		item, ok := canonicalize(entry, name)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return name, items, nil
}

// canonicalize converts one feed entry, preferring full content over the
// summary and stripping markup from whichever is used.
func canonicalize(entry *gofeed.Item, feedName string) (content.Item, bool) {
	if entry.Title == "" && entry.Link == "" {
		return content.Item{}, false
	}

	body := entry.Content
	if body == "" {
		body = entry.Description
	}
	body = extractText(body)

	var author string
	if entry.Author != nil {
		author = entry.Author.Name
	}

	var category string
	if len(entry.Categories) > 0 {
		category = entry.Categories[0]
	}

	published := time.Now().UTC()
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.UTC()
	} else if entry.UpdatedParsed != nil {
		published = entry.UpdatedParsed.UTC()
	}

	return content.Item{
		Title:       strings.TrimSpace(entry.Title),
		Body:        body,
		URL:         entry.Link,
		Source:      feedName,
		SourceType:  content.SourceRSS,
		PublishedAt: published,
		Author:      author,
		Category:    category,
	}, true
}

// extractText strips HTML markup, drops script and style subtrees, collapses
// whitespace, and clips the result.
func extractText(raw string) string {
	if raw == "" {
		return ""
	}

	text := raw
	if strings.Contains(raw, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err == nil {
			doc.Find("script, style").Remove()
			text = doc.Text()
		}
	}

	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > maxBodyRunes {
		text = string(runes[:maxBodyRunes])
	}
	return text
}

func matchesQuery(item content.Item, needle string) bool {
	if needle == "" {
		return true
	}
	haystack := strings.ToLower(item.Title + " " + item.Body + " " + item.Category)
	return strings.Contains(haystack, needle)
}
