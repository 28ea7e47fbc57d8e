package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsfuse/internal/content"
	"newsfuse/internal/ratelimit"
	"newsfuse/internal/source"
)

// fakeClient implements source.Client for orchestration tests.
type fakeClient struct {
	sourceType content.SourceType
	available  bool
	items      []content.Item
	err        error
	delay      time.Duration
	calls      int
}

func (f *fakeClient) Search(ctx context.Context, query string, limit int) ([]content.Item, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeClient) Available() bool          { return f.available }
func (f *fakeClient) Type() content.SourceType { return f.sourceType }

func redditItem(url string, score int, age time.Duration) content.Item {
	return content.Item{
		Title:       "title for " + url,
		URL:         url,
		SourceType:  content.SourceReddit,
		PublishedAt: time.Now().Add(-age),
		Score:       score,
	}
}

func TestMultiSourceSearch_FaultIsolation(t *testing.T) {
	failing := &fakeClient{sourceType: content.SourceNews, available: true, err: errors.New("boom")}
	healthy := &fakeClient{
		sourceType: content.SourceReddit,
		available:  true,
		items:      []content.Item{redditItem("http://x.com/1", 1, time.Hour)},
	}

	agg := New(nil, []source.Client{failing, healthy})
	results, err := agg.MultiSourceSearch(context.Background(), "robots", SearchOptions{})

	if err != nil {
		t.Fatalf("a failing source must not abort the search: %v", err)
	}
	if len(results[content.SourceNews]) != 0 {
		t.Errorf("failing source should yield empty list, got %d items", len(results[content.SourceNews]))
	}
	if len(results[content.SourceReddit]) != 1 {
		t.Errorf("healthy source should yield results, got %d items", len(results[content.SourceReddit]))
	}
	if _, ok := results[content.SourceNews]; !ok {
		t.Error("every requested source key must be present in the result")
	}
}

func TestMultiSourceSearch_SkipsUnavailableSourceWithoutCalling(t *testing.T) {
	unavailable := &fakeClient{sourceType: content.SourceNews, available: false}

	agg := New(nil, []source.Client{unavailable})
	results, err := agg.MultiSourceSearch(context.Background(), "robots", SearchOptions{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unavailable.calls != 0 {
		t.Errorf("unavailable source must not be fetched, got %d calls", unavailable.calls)
	}
	if len(results[content.SourceNews]) != 0 {
		t.Errorf("unavailable source should yield empty list")
	}
}

func TestMultiSourceSearch_ParallelCanceledContext(t *testing.T) {
	client := &fakeClient{
		sourceType: content.SourceNews,
		available:  true,
		items:      []content.Item{redditItem("http://x.com/1", 1, time.Hour)},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := New(nil, []source.Client{client})
	_, err := agg.MultiSourceSearch(ctx, "robots", SearchOptions{Parallel: true})

	if err == nil {
		t.Fatal("a canceled caller context must surface as an error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMultiSourceSearch_ParallelTimeoutYieldsEmptyResult(t *testing.T) {
	slow := &fakeClient{
		sourceType: content.SourceNews,
		available:  true,
		delay:      500 * time.Millisecond,
		items:      []content.Item{redditItem("http://slow.com/1", 1, time.Hour)},
	}
	fast := &fakeClient{
		sourceType: content.SourceReddit,
		available:  true,
		items:      []content.Item{redditItem("http://fast.com/1", 1, time.Hour)},
	}

	agg := New(nil, []source.Client{slow, fast}, WithFetchTimeout(50*time.Millisecond))
	results, err := agg.MultiSourceSearch(context.Background(), "robots", SearchOptions{Parallel: true})

	if err != nil {
		t.Fatalf("a timed-out source must not abort the search: %v", err)
	}
	if len(results[content.SourceNews]) != 0 {
		t.Errorf("timed-out source should yield empty list, got %d items", len(results[content.SourceNews]))
	}
	if len(results[content.SourceReddit]) != 1 {
		t.Errorf("fast source should still yield results, got %d items", len(results[content.SourceReddit]))
	}
}

func TestMultiSourceSearch_ValidatesOptions(t *testing.T) {
	agg := New(nil, []source.Client{&fakeClient{sourceType: content.SourceNews, available: true}})

	if _, err := agg.MultiSourceSearch(context.Background(), "", SearchOptions{}); err == nil {
		t.Error("expected error for empty query")
	}
	if _, err := agg.MultiSourceSearch(context.Background(), "q", SearchOptions{MaxPerSource: -1}); err == nil {
		t.Error("expected error for negative limit")
	}
	if _, err := agg.MultiSourceSearch(context.Background(), "q", SearchOptions{Sources: []content.SourceType{"telegraph"}}); err == nil {
		t.Error("expected error for unknown source type")
	}
}

func TestMultiSourceSearch_DropsUnidentifiableItems(t *testing.T) {
	client := &fakeClient{
		sourceType: content.SourceNews,
		available:  true,
		items: []content.Item{
			{Body: "no title, no url", SourceType: content.SourceNews},
			{Title: "keeper", URL: "http://x.com/k", SourceType: content.SourceNews},
		},
	}

	agg := New(nil, []source.Client{client})
	results, err := agg.MultiSourceSearch(context.Background(), "robots", SearchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results[content.SourceNews]) != 1 {
		t.Fatalf("expected the unidentifiable item dropped, got %d items", len(results[content.SourceNews]))
	}
}

func TestTrendingContent_OrdersByScoreDescending(t *testing.T) {
	client := &fakeClient{
		sourceType: content.SourceReddit,
		available:  true,
		items: []content.Item{
			redditItem("http://x.com/a", 5, time.Hour),
			redditItem("http://x.com/b", 2, time.Hour),
			redditItem("http://x.com/c", 8, time.Hour),
		},
	}

	agg := New(nil, []source.Client{client})
	trending, err := agg.TrendingContent(context.Background(), []string{"robotics"}, TrendingOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := trending["robotics"]
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	scores := []int{items[0].Score, items[1].Score, items[2].Score}
	if scores[0] != 8 || scores[1] != 5 || scores[2] != 2 {
		t.Errorf("expected scores [8 5 2], got %v", scores)
	}
}

func TestTrendingContent_FiltersOutsideWindow(t *testing.T) {
	client := &fakeClient{
		sourceType: content.SourceReddit,
		available:  true,
		items: []content.Item{
			redditItem("http://x.com/fresh", 1, time.Hour),
			redditItem("http://x.com/stale", 9, 72*time.Hour),
		},
	}

	agg := New(nil, []source.Client{client})
	trending, err := agg.TrendingContent(context.Background(), []string{"robotics"}, TrendingOptions{HoursBack: 24})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := trending["robotics"]
	if len(items) != 1 || items[0].URL != "http://x.com/fresh" {
		t.Fatalf("expected only the fresh item, got %v", items)
	}
}

func TestContentByTopics_DeduplicatesByURL(t *testing.T) {
	newsClient := &fakeClient{
		sourceType: content.SourceNews,
		available:  true,
		items: []content.Item{
			{Title: "first", URL: "http://x.com/story", SourceType: content.SourceNews, PublishedAt: time.Now()},
		},
	}
	feedClient := &fakeClient{
		sourceType: content.SourceRSS,
		available:  true,
		items: []content.Item{
			{Title: "same story again", URL: "http://x.com/story", SourceType: content.SourceRSS, PublishedAt: time.Now()},
			{Title: "other", URL: "http://x.com/other", SourceType: content.SourceRSS, PublishedAt: time.Now()},
		},
	}

	agg := New(nil, []source.Client{newsClient, feedClient})
	byTopic, err := agg.ContentByTopics(context.Background(), []string{"robotics"}, TopicOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := byTopic["robotics"]
	if len(items) != 2 {
		t.Fatalf("expected URL duplicate removed, got %d items", len(items))
	}
	// First occurrence wins: news has higher merge priority than rss.
	if items[0].Title != "first" {
		t.Errorf("expected the news copy kept first, got %q", items[0].Title)
	}
}

func TestContentByTopics_CollapsesTrackingParamVariants(t *testing.T) {
	newsClient := &fakeClient{
		sourceType: content.SourceNews,
		available:  true,
		items: []content.Item{
			{Title: "robot arm ships", URL: "https://x.com/robots?utm_source=newsletter", SourceType: content.SourceNews, PublishedAt: time.Now()},
		},
	}
	feedClient := &fakeClient{
		sourceType: content.SourceRSS,
		available:  true,
		items: []content.Item{
			{Title: "robot arm ships", URL: "https://x.com/robots?fbclid=abc123", SourceType: content.SourceRSS, PublishedAt: time.Now()},
		},
	}

	agg := New(nil, []source.Client{newsClient, feedClient})
	byTopic, err := agg.ContentByTopics(context.Background(), []string{"robotics"}, TopicOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := byTopic["robotics"]
	if len(items) != 1 {
		t.Fatalf("expected tracking-param variants collapsed to one item, got %d", len(items))
	}
	if items[0].SourceType != content.SourceNews {
		t.Errorf("expected the news copy kept, got %q", items[0].SourceType)
	}
}

func TestContentByTopics_SortsBySourcePriority(t *testing.T) {
	now := time.Now()
	redditClient := &fakeClient{
		sourceType: content.SourceReddit,
		available:  true,
		items:      []content.Item{{Title: "r", URL: "http://x.com/r", SourceType: content.SourceReddit, PublishedAt: now}},
	}
	newsClient := &fakeClient{
		sourceType: content.SourceNews,
		available:  true,
		items:      []content.Item{{Title: "n", URL: "http://x.com/n", SourceType: content.SourceNews, PublishedAt: now.Add(-time.Hour)}},
	}

	agg := New(nil, []source.Client{redditClient, newsClient})
	byTopic, err := agg.ContentByTopics(context.Background(), []string{"ai"}, TopicOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := byTopic["ai"]
	if items[0].SourceType != content.SourceNews {
		t.Errorf("news should outrank reddit despite being older, got %q first", items[0].SourceType)
	}
}

func TestSourcesStatus(t *testing.T) {
	limiter := ratelimit.New(time.Millisecond)
	available := &fakeClient{sourceType: content.SourceNews, available: true}
	unavailable := &fakeClient{sourceType: content.SourceReddit, available: false}

	agg := New(limiter, []source.Client{available, unavailable})

	if _, err := agg.MultiSourceSearch(context.Background(), "q", SearchOptions{Sources: []content.SourceType{content.SourceNews}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status := agg.SourcesStatus()
	if !status[content.SourceNews].Available {
		t.Error("news source should report available")
	}
	if status[content.SourceReddit].Available {
		t.Error("reddit source should report unavailable")
	}
	if status[content.SourceNews].LastRequest.IsZero() {
		t.Error("news source should report a last request time after a search")
	}
	if !status[content.SourceReddit].LastRequest.IsZero() {
		t.Error("unused source should report zero last request time")
	}
}
