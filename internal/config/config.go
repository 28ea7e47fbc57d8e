// Package config assembles runtime settings from defaults, an optional
// YAML file, and environment variables, in that order of precedence.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "NEWSFUSE_CONFIG"
	newsAPIKeyEnv      = "NEWSAPI_KEY"
	redditUserAgentEnv = "REDDIT_USER_AGENT"
	subredditsEnv      = "NEWSFUSE_SUBREDDITS"
	feedsEnv           = "NEWSFUSE_FEEDS"
	logLevelEnv        = "NEWSFUSE_LOG_LEVEL"
	logFormatEnv       = "NEWSFUSE_LOG_FORMAT"
	rateLimitEnv       = "NEWSFUSE_RATE_LIMIT_SECONDS"
	samplesPathEnv     = "NEWSFUSE_TRAINING_SAMPLES"
)

// Config holds high-level settings required across the application.
type Config struct {
	NewsAPI     NewsAPIConfig     `yaml:"newsapi"`
	Reddit      RedditConfig      `yaml:"reddit"`
	Feeds       []string          `yaml:"feeds"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Dedup       DedupConfig       `yaml:"dedup"`
	Classify    ClassifyConfig    `yaml:"classify"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// NewsAPIConfig describes NewsAPI access.
type NewsAPIConfig struct {
	Key     string `yaml:"key"`
	BaseURL string `yaml:"baseUrl"`
}

// RedditConfig describes the public Reddit listing endpoints.
type RedditConfig struct {
	UserAgent  string   `yaml:"userAgent"`
	Subreddits []string `yaml:"subreddits"`
}

// AggregationConfig tunes the multi-source fetch pipeline.
type AggregationConfig struct {
	RateLimitSeconds    int  `yaml:"rateLimitSeconds"`
	FetchTimeoutSeconds int  `yaml:"fetchTimeoutSeconds"`
	MaxWorkers          int  `yaml:"maxWorkers"`
	MaxPerSource        int  `yaml:"maxPerSource"`
	Parallel            bool `yaml:"parallel"`
}

// RateLimit resolves the per-source request interval.
func (a AggregationConfig) RateLimit() time.Duration {
	return time.Duration(a.RateLimitSeconds) * time.Second
}

// FetchTimeout resolves the per-source fetch deadline.
func (a AggregationConfig) FetchTimeout() time.Duration {
	return time.Duration(a.FetchTimeoutSeconds) * time.Second
}

// DedupConfig tunes the duplicate detector.
type DedupConfig struct {
	TitleThreshold float64 `yaml:"titleThreshold"`
	BodyThreshold  float64 `yaml:"bodyThreshold"`
	WindowHours    int     `yaml:"windowHours"`
}

// ClassifyConfig points at optional training data for the Bayes model.
type ClassifyConfig struct {
	SamplesPath string `yaml:"samplesPath"`
}

// LoggingConfig selects handler level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env (if present), then YAML configuration (if present),
// and applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.NewsAPI.Key = v
	}

	if v := os.Getenv(redditUserAgentEnv); v != "" {
		c.Reddit.UserAgent = v
	}

	if v := os.Getenv(subredditsEnv); v != "" {
		c.Reddit.Subreddits = splitList(v)
	}

	if v := os.Getenv(feedsEnv); v != "" {
		c.Feeds = splitList(v)
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(rateLimitEnv); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			c.Aggregation.RateLimitSeconds = seconds
		} else {
			log.Printf("config: ignoring invalid %s=%q", rateLimitEnv, v)
		}
	}

	if v := os.Getenv(samplesPathEnv); v != "" {
		c.Classify.SamplesPath = v
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mergeConfig(base, override Config) Config {
	if override.NewsAPI.Key != "" {
		base.NewsAPI.Key = override.NewsAPI.Key
	}
	if override.NewsAPI.BaseURL != "" {
		base.NewsAPI.BaseURL = override.NewsAPI.BaseURL
	}

	if override.Reddit.UserAgent != "" {
		base.Reddit.UserAgent = override.Reddit.UserAgent
	}
	if len(override.Reddit.Subreddits) > 0 {
		base.Reddit.Subreddits = override.Reddit.Subreddits
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Aggregation.RateLimitSeconds > 0 {
		base.Aggregation.RateLimitSeconds = override.Aggregation.RateLimitSeconds
	}
	if override.Aggregation.FetchTimeoutSeconds > 0 {
		base.Aggregation.FetchTimeoutSeconds = override.Aggregation.FetchTimeoutSeconds
	}
	if override.Aggregation.MaxWorkers > 0 {
		base.Aggregation.MaxWorkers = override.Aggregation.MaxWorkers
	}
	if override.Aggregation.MaxPerSource > 0 {
		base.Aggregation.MaxPerSource = override.Aggregation.MaxPerSource
	}
	if override.Aggregation.Parallel {
		base.Aggregation.Parallel = true
	}

	if override.Dedup.TitleThreshold > 0 {
		base.Dedup.TitleThreshold = override.Dedup.TitleThreshold
	}
	if override.Dedup.BodyThreshold > 0 {
		base.Dedup.BodyThreshold = override.Dedup.BodyThreshold
	}
	if override.Dedup.WindowHours > 0 {
		base.Dedup.WindowHours = override.Dedup.WindowHours
	}

	if override.Classify.SamplesPath != "" {
		base.Classify.SamplesPath = override.Classify.SamplesPath
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		NewsAPI: NewsAPIConfig{},
		Reddit: RedditConfig{
			UserAgent:  "newsfuse/1.0",
			Subreddits: []string{"technology", "science", "worldnews"},
		},
		Feeds: []string{
			"https://feeds.bbci.co.uk/news/rss.xml",
			"http://rss.cnn.com/rss/cnn_topstories.rss",
		},
		Aggregation: AggregationConfig{
			RateLimitSeconds:    2,
			FetchTimeoutSeconds: 60,
			MaxWorkers:          5,
			MaxPerSource:        10,
			Parallel:            true,
		},
		Dedup: DedupConfig{
			TitleThreshold: 0.8,
			BodyThreshold:  0.8,
			WindowHours:    24,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
