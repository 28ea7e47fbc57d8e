// Package aggregator fans queries out to the registered source clients and
// merges their results into topic views.
//
// The aggregator is the fault boundary of the pipeline: a source that is
// unavailable, errors, or times out contributes an empty list and a log
// entry, never an error to the caller. Only malformed invocations (empty
// query, unknown source, negative limits) fail fast.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"newsfuse/internal/content"
	"newsfuse/internal/dedup"
	"newsfuse/internal/ratelimit"
	"newsfuse/internal/source"
)

const (
	defaultMaxPerSource = 10
	defaultMaxWorkers   = 5
	defaultFetchTimeout = 60 * time.Second
)

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithFetchTimeout overrides the per-source timeout used in parallel mode.
func WithFetchTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		a.fetchTimeout = d
	}
}

// WithMaxWorkers bounds the number of concurrent source fetches.
func WithMaxWorkers(n int) Option {
	return func(a *Aggregator) {
		a.maxWorkers = n
	}
}

// Aggregator coordinates the source clients behind one query surface.
type Aggregator struct {
	clients      map[content.SourceType]source.Client
	limiter      *ratelimit.PerSource
	logger       *slog.Logger
	maxWorkers   int
	fetchTimeout time.Duration
}

// New creates an Aggregator over the given clients. The limiter spaces out
// calls per source type; clients listed here are the only ones reachable.
func New(limiter *ratelimit.PerSource, clients []source.Client, opts ...Option) *Aggregator {
	a := &Aggregator{
		clients:      make(map[content.SourceType]source.Client, len(clients)),
		limiter:      limiter,
		maxWorkers:   defaultMaxWorkers,
		fetchTimeout: defaultFetchTimeout,
	}
	for _, c := range clients {
		a.clients[c.Type()] = c
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SearchOptions configures MultiSourceSearch.
type SearchOptions struct {
	// Sources selects the source types to query; empty means every
	// registered source.
	Sources []content.SourceType
	// MaxPerSource caps results per source; zero means the default of 10.
	MaxPerSource int
	// Parallel dispatches sources concurrently with a bounded worker pool.
	Parallel bool
}

func (o *SearchOptions) normalize(registered map[content.SourceType]source.Client) error {
	if o.MaxPerSource < 0 {
		return fmt.Errorf("invalid max per source: %d", o.MaxPerSource)
	}
	if o.MaxPerSource == 0 {
		o.MaxPerSource = defaultMaxPerSource
	}
	if len(o.Sources) == 0 {
		for st := range registered {
			o.Sources = append(o.Sources, st)
		}
		return nil
	}
	for _, st := range o.Sources {
		if !st.Valid() {
			return fmt.Errorf("unknown source type: %q", st)
		}
	}
	return nil
}

// MultiSourceSearch queries each requested source and returns results keyed
// by source type. Every requested key is present in the returned map, empty
// when its source is unavailable or failed.
func (a *Aggregator) MultiSourceSearch(ctx context.Context, query string, opts SearchOptions) (map[content.SourceType][]content.Item, error) {
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if err := opts.normalize(a.clients); err != nil {
		return nil, err
	}

	results := make(map[content.SourceType][]content.Item, len(opts.Sources))

	if !opts.Parallel {
		for _, st := range opts.Sources {
			results[st] = a.searchOne(ctx, st, query, opts.MaxPerSource)
		}
		return results, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxWorkers)

	for _, st := range opts.Sources {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, a.fetchTimeout)
			defer cancel()

			items := a.searchOne(fetchCtx, st, query, opts.MaxPerSource)

			mu.Lock()
			results[st] = items
			mu.Unlock()
			return gctx.Err()
		})
	}

	// Per-source failures degrade inside searchOne; the only group error
	// is cancellation of the caller's context.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// searchOne runs a single rate-limited fetch. Failures degrade to an empty
// slice so one source can never abort the others.
func (a *Aggregator) searchOne(ctx context.Context, st content.SourceType, query string, limit int) []content.Item {
	client, ok := a.clients[st]
	if !ok || !client.Available() {
		a.debug("source unavailable, skipping", "source", st)
		return []content.Item{}
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, st); err != nil {
			a.warn("rate limit wait aborted", "source", st, "error", err)
			return []content.Item{}
		}
	}

	items, err := client.Search(ctx, query, limit)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			a.warn("source timed out", "source", st, "query", query)
		} else {
			a.warn("source search failed", "source", st, "query", query, "error", err)
		}
		return []content.Item{}
	}

	kept := items[:0]
	for _, it := range items {
		if it.Identifiable() {
			kept = append(kept, it)
		}
	}
	a.debug("source search complete", "source", st, "query", query, "results", len(kept))
	return kept
}

// TrendingOptions configures TrendingContent.
type TrendingOptions struct {
	Sources     []content.SourceType
	HoursBack   int // recency window, default 24
	MaxPerTopic int // default 5
}

// TrendingContent searches each topic across the sources, keeps items
// published within the recency window, and ranks them by score then recency.
func (a *Aggregator) TrendingContent(ctx context.Context, topics []string, opts TrendingOptions) (map[string][]content.Item, error) {
	if len(topics) == 0 {
		return nil, errors.New("topics must not be empty")
	}
	if opts.HoursBack < 0 || opts.MaxPerTopic < 0 {
		return nil, fmt.Errorf("invalid trending options: hours_back=%d max_per_topic=%d", opts.HoursBack, opts.MaxPerTopic)
	}
	if opts.HoursBack == 0 {
		opts.HoursBack = 24
	}
	if opts.MaxPerTopic == 0 {
		opts.MaxPerTopic = 5
	}

	trending := make(map[string][]content.Item, len(topics))
	for _, topic := range topics {
		bySource, err := a.MultiSourceSearch(ctx, topic, SearchOptions{
			Sources:      opts.Sources,
			MaxPerSource: opts.MaxPerTopic,
			Parallel:     true,
		})
		if err != nil {
			return nil, err
		}

		var merged []content.Item
		for _, items := range bySource {
			merged = append(merged, items...)
		}

		cutoff := time.Now().Add(-time.Duration(opts.HoursBack) * time.Hour)
		merged = content.FilterSince(merged, cutoff)
		content.SortByScore(merged)
		if len(merged) > opts.MaxPerTopic {
			merged = merged[:opts.MaxPerTopic]
		}
		trending[topic] = merged
	}
	return trending, nil
}

// TopicOptions configures ContentByTopics.
type TopicOptions struct {
	Sources     []content.SourceType
	MaxPerTopic int // default 10
}

// ContentByTopics merges all sources per topic, drops items whose
// normalized URLs collide (first occurrence wins), and orders by
// source-type priority then recency.
func (a *Aggregator) ContentByTopics(ctx context.Context, topics []string, opts TopicOptions) (map[string][]content.Item, error) {
	if len(topics) == 0 {
		return nil, errors.New("topics must not be empty")
	}
	if opts.MaxPerTopic < 0 {
		return nil, fmt.Errorf("invalid max per topic: %d", opts.MaxPerTopic)
	}
	if opts.MaxPerTopic == 0 {
		opts.MaxPerTopic = defaultMaxPerSource
	}

	aggregated := make(map[string][]content.Item, len(topics))
	for _, topic := range topics {
		bySource, err := a.MultiSourceSearch(ctx, topic, SearchOptions{
			Sources:      opts.Sources,
			MaxPerSource: opts.MaxPerTopic,
			Parallel:     true,
		})
		if err != nil {
			return nil, err
		}

		seen := make(map[string]struct{})
		var merged []content.Item
		for _, st := range content.AllSourceTypes() {
			for _, it := range bySource[st] {
				if it.URL != "" {
					key := dedup.NormalizeURL(it.URL)
					if _, dup := seen[key]; dup {
						continue
					}
					seen[key] = struct{}{}
				}
				merged = append(merged, it)
			}
		}

		content.SortByPriority(merged)
		if len(merged) > opts.MaxPerTopic {
			merged = merged[:opts.MaxPerTopic]
		}
		aggregated[topic] = merged
	}
	return aggregated, nil
}

// Status describes one source for health reporting.
type Status struct {
	Available   bool      `json:"available"`
	LastRequest time.Time `json:"last_request"`
}

// SourcesStatus reports availability and last request time per source type.
func (a *Aggregator) SourcesStatus() map[content.SourceType]Status {
	status := make(map[content.SourceType]Status, len(a.clients))
	for st, client := range a.clients {
		s := Status{Available: client.Available()}
		if a.limiter != nil {
			s.LastRequest = a.limiter.LastRequest(st)
		}
		status[st] = s
	}
	return status
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
