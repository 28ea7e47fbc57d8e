// Package main provides the newsfuse CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"newsfuse/internal/aggregator"
	"newsfuse/internal/classify"
	"newsfuse/internal/config"
	"newsfuse/internal/content"
	"newsfuse/internal/dedup"
	"newsfuse/internal/display"
	"newsfuse/internal/logging"
	"newsfuse/internal/newsapi"
	"newsfuse/internal/ratelimit"
	"newsfuse/internal/redditapi"
	"newsfuse/internal/rssfeed"
	"newsfuse/internal/source"
)

// version is overridable at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired pipeline shared by all subcommands.
type app struct {
	cfg        config.Config
	logger     *slog.Logger
	aggregator *aggregator.Aggregator
	classifier *classify.Classifier
	formatter  *display.TerminalFormatter
}

// newApp loads configuration and wires every pipeline stage.
func newApp() *app {
	cfg := config.Load()
	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	var clients []source.Client
	if cfg.NewsAPI.Key != "" {
		opts := []newsapi.ClientOption{newsapi.WithLogger(logger)}
		if cfg.NewsAPI.BaseURL != "" {
			opts = append(opts, newsapi.WithBaseURL(cfg.NewsAPI.BaseURL))
		}
		clients = append(clients, newsapi.NewClient(cfg.NewsAPI.Key, opts...))
	}
	clients = append(clients,
		redditapi.NewClient(cfg.Reddit.UserAgent, cfg.Reddit.Subreddits, redditapi.WithLogger(logger)),
		rssfeed.NewClient(cfg.Feeds, rssfeed.WithLogger(logger)),
	)

	limiter := ratelimit.New(cfg.Aggregation.RateLimit())
	agg := aggregator.New(limiter, clients,
		aggregator.WithLogger(logger),
		aggregator.WithFetchTimeout(cfg.Aggregation.FetchTimeout()),
		aggregator.WithMaxWorkers(cfg.Aggregation.MaxWorkers),
	)

	classifierOpts := []classify.Option{classify.WithLogger(logger)}
	if cfg.Classify.SamplesPath != "" {
		if model, err := loadModel(cfg.Classify.SamplesPath); err != nil {
			logger.Warn("training samples unusable, keyword classification only",
				slog.String("path", cfg.Classify.SamplesPath),
				slog.String("error", err.Error()))
		} else {
			classifierOpts = append(classifierOpts, classify.WithModel(model))
		}
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		aggregator: agg,
		classifier: classify.New(classifierOpts...),
		formatter:  display.NewTerminalFormatter(),
	}
}

// loadModel trains a naive Bayes model from a YAML samples file.
func loadModel(path string) (*classify.Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var samples []classify.Sample
	if err := yaml.Unmarshal(raw, &samples); err != nil {
		return nil, fmt.Errorf("parse samples: %w", err)
	}
	model := classify.NewModel()
	if err := model.Train(samples); err != nil {
		return nil, err
	}
	return model, nil
}

// dedupOptions maps config thresholds onto the duplicate detector.
func (a *app) dedupOptions() dedup.Options {
	opts := dedup.DefaultOptions()
	opts.TitleThreshold = a.cfg.Dedup.TitleThreshold
	opts.BodyThreshold = a.cfg.Dedup.BodyThreshold
	opts.Logger = a.logger
	return opts
}

// applyDedup runs the batch pass and then collapses near-identical
// stories republished within the configured window. With a window set,
// title similarity only counts inside the window; URL, hash, and body
// checks stay timeless. A zero window applies every check timelessly.
func applyDedup(items []content.Item, opts dedup.Options, windowHours int) ([]content.Item, dedup.Stats) {
	if windowHours <= 0 {
		result := dedup.Batch(items, opts)
		return result.Unique, result.Stats
	}

	batchOpts := opts
	batchOpts.CheckTitle = false
	result := dedup.Batch(items, batchOpts)
	unique := dedup.CollapseWindow(result.Unique, windowHours, opts)
	result.Stats.Unique = len(unique)
	result.Stats.Duplicates = result.Stats.Checked - len(unique)
	return unique, result.Stats
}

// parseMethod validates a classification method flag. Empty selects
// hybrid.
func parseMethod(raw string) (string, error) {
	method := strings.ToLower(strings.TrimSpace(raw))
	switch method {
	case "", classify.MethodKeyword, classify.MethodML, classify.MethodHybrid:
		return method, nil
	}
	return "", fmt.Errorf("unknown method %q: must be keyword, ml, or hybrid", raw)
}

func parseSources(raw string) ([]content.SourceType, error) {
	if raw == "" {
		return nil, nil
	}
	var sources []content.SourceType
	for _, part := range strings.Split(raw, ",") {
		st := content.SourceType(strings.ToLower(strings.TrimSpace(part)))
		if !st.Valid() {
			return nil, fmt.Errorf("unknown source %q: must be news, reddit, or rss", part)
		}
		sources = append(sources, st)
	}
	return sources, nil
}

// newRootCmd creates the root command for the newsfuse CLI.
func newRootCmd() *cobra.Command {
	info, _ := debug.ReadBuildInfo()
	rootCmd := &cobra.Command{
		Use:     "newsfuse",
		Short:   "Aggregate, deduplicate, and classify news content",
		Long:    "Newsfuse pulls content from NewsAPI, Reddit, and RSS feeds, removes duplicates, and assigns topical categories.",
		Version: resolveVersion(version, info),
	}

	rootCmd.SetVersionTemplate("newsfuse version {{.Version}}\n")

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newTrendingCmd())
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newRecentCmd())
	rootCmd.AddCommand(newStatusCmd())

	return rootCmd
}

// newSearchCmd creates the search subcommand.
func newSearchCmd() *cobra.Command {
	var sourcesFlag string
	var limit int
	var sequential bool
	var noDedup bool
	var showStats bool
	var methodFlag string
	var mlWeight float64

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search all sources for a query",
		Long:  "Search every configured source in parallel, deduplicate the results, and classify each item.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := parseSources(sourcesFlag)
			if err != nil {
				return err
			}
			method, err := parseMethod(methodFlag)
			if err != nil {
				return err
			}

			a := newApp()
			ctx, cancel := context.WithTimeout(context.Background(), 2*a.cfg.Aggregation.FetchTimeout())
			defer cancel()

			bySource, err := a.aggregator.MultiSourceSearch(ctx, args[0], aggregator.SearchOptions{
				Sources:      sources,
				MaxPerSource: limit,
				Parallel:     !sequential,
			})
			if err != nil {
				return err
			}

			var items []content.Item
			for _, st := range content.AllSourceTypes() {
				items = append(items, bySource[st]...)
			}

			var dedupStats dedup.Stats
			if !noDedup {
				items, dedupStats = applyDedup(items, a.dedupOptions(), a.cfg.Dedup.WindowHours)
			}

			classified, classifyStats := a.classifier.ClassifyBatch(items, classify.Options{
				Method:   method,
				MLWeight: mlWeight,
			})
			content.SortByPriority(classified)

			fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatFeed(classified))
			if showStats {
				fmt.Fprintln(cmd.OutOrStdout())
				if !noDedup {
					fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatDedupStats(dedupStats))
				}
				fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatClassifyStats(classifyStats))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourcesFlag, "sources", "s", "", "Comma-separated sources to query (news, reddit, rss)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum items per source")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "Query sources one at a time")
	cmd.Flags().BoolVar(&noDedup, "no-dedup", false, "Skip duplicate removal")
	cmd.Flags().BoolVar(&showStats, "stats", false, "Print dedup and classification summaries")
	cmd.Flags().StringVar(&methodFlag, "method", "", "Classification method (keyword, ml, or hybrid)")
	cmd.Flags().Float64Var(&mlWeight, "ml-weight", 0, "Model share of hybrid disagreements, in (0, 1)")

	return cmd
}

// newTrendingCmd creates the trending subcommand.
func newTrendingCmd() *cobra.Command {
	var sourcesFlag string
	var hours int
	var perTopic int

	cmd := &cobra.Command{
		Use:   "trending <topic>...",
		Short: "Show recent high-scoring content per topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := parseSources(sourcesFlag)
			if err != nil {
				return err
			}

			a := newApp()
			ctx, cancel := context.WithTimeout(context.Background(), 2*a.cfg.Aggregation.FetchTimeout())
			defer cancel()

			byTopic, err := a.aggregator.TrendingContent(ctx, args, aggregator.TrendingOptions{
				Sources:     sources,
				HoursBack:   hours,
				MaxPerTopic: perTopic,
			})
			if err != nil {
				return err
			}

			printTopics(cmd, a, byTopic)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourcesFlag, "sources", "s", "", "Comma-separated sources to query (news, reddit, rss)")
	cmd.Flags().IntVar(&hours, "hours", 24, "How far back to look")
	cmd.Flags().IntVarP(&perTopic, "limit", "l", 5, "Maximum items per topic")

	return cmd
}

// newTopicsCmd creates the topics subcommand.
func newTopicsCmd() *cobra.Command {
	var sourcesFlag string
	var perTopic int

	cmd := &cobra.Command{
		Use:   "topics <topic>...",
		Short: "Fetch a merged view of content per topic",
		Long:  "Fetch content for each topic, merge sources by priority, and drop exact URL duplicates.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := parseSources(sourcesFlag)
			if err != nil {
				return err
			}

			a := newApp()
			ctx, cancel := context.WithTimeout(context.Background(), 2*a.cfg.Aggregation.FetchTimeout())
			defer cancel()

			byTopic, err := a.aggregator.ContentByTopics(ctx, args, aggregator.TopicOptions{
				Sources:     sources,
				MaxPerTopic: perTopic,
			})
			if err != nil {
				return err
			}

			printTopics(cmd, a, byTopic)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourcesFlag, "sources", "s", "", "Comma-separated sources to query (news, reddit, rss)")
	cmd.Flags().IntVarP(&perTopic, "limit", "l", 10, "Maximum items per topic")

	return cmd
}

// printTopics renders per-topic results with classified categories.
func printTopics(cmd *cobra.Command, a *app, byTopic map[string][]content.Item) {
	topics := make([]string, 0, len(byTopic))
	for topic := range byTopic {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	for _, topic := range topics {
		classified, _ := a.classifier.ClassifyBatch(byTopic[topic], classify.Options{})
		fmt.Fprintf(cmd.OutOrStdout(), "== %s ==\n\n", topic)
		fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatFeed(classified))
		fmt.Fprintln(cmd.OutOrStdout())
	}
}

// newRecentCmd creates the recent subcommand.
func newRecentCmd() *cobra.Command {
	var hours int
	var perFeed int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent entries from the configured RSS feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Aggregation.FetchTimeout())
			defer cancel()

			feedClient := rssfeed.NewClient(a.cfg.Feeds, rssfeed.WithLogger(a.logger))
			items, err := feedClient.Recent(ctx, a.cfg.Feeds, hours, perFeed)
			if err != nil {
				return err
			}

			unique, _ := applyDedup(items, a.dedupOptions(), a.cfg.Dedup.WindowHours)
			classified, _ := a.classifier.ClassifyBatch(unique, classify.Options{})
			fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatFeed(classified))
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "How far back to look")
	cmd.Flags().IntVarP(&perFeed, "limit", "l", 10, "Maximum entries per feed")

	return cmd
}

// newStatusCmd creates the status subcommand.
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the availability of each configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()

			statuses := a.aggregator.SourcesStatus()
			for _, st := range content.AllSourceTypes() {
				status, ok := statuses[st]
				if !ok {
					continue
				}
				state := "unavailable"
				if status.Available {
					state = "available"
				}
				last := "never"
				if !status.LastRequest.IsZero() {
					last = status.LastRequest.Format(time.RFC3339)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-12s last request: %s\n", st, state, last)
			}
			return nil
		},
	}

	return cmd
}
