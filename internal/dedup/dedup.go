// Package dedup removes duplicate content items using layered checks:
// normalized URL identity, body fingerprints, fuzzy title matching, and
// body text similarity. Sessions are caller owned, so independent
// pipelines never share duplicate state.
package dedup

import (
	"log/slog"
	"sort"
	"time"

	"newsfuse/internal/content"
)

// Reason identifies which check flagged an item as a duplicate.
type Reason string

const (
	ReasonURL   Reason = "url"
	ReasonHash  Reason = "content_hash"
	ReasonTitle Reason = "title"
	ReasonBody  Reason = "body"
)

const defaultThreshold = 0.8

// Options selects which checks run and how strict the fuzzy ones are.
// The zero value enables everything with standard thresholds.
type Options struct {
	CheckURL   bool
	CheckHash  bool
	CheckTitle bool
	CheckBody  bool

	// TitleThreshold and BodyThreshold are minimum similarity scores in
	// (0,1] for the fuzzy checks. Zero means the default of 0.8.
	TitleThreshold float64
	BodyThreshold  float64

	// Backend scores body similarity. Nil means the TF-IDF backend.
	Backend Backend

	Logger *slog.Logger
}

// DefaultOptions enables all four checks at the standard thresholds.
func DefaultOptions() Options {
	return Options{CheckURL: true, CheckHash: true, CheckTitle: true, CheckBody: true}
}

func (o Options) normalized() Options {
	if !o.CheckURL && !o.CheckHash && !o.CheckTitle && !o.CheckBody {
		o.CheckURL = true
		o.CheckHash = true
		o.CheckTitle = true
		o.CheckBody = true
	}
	if o.TitleThreshold <= 0 {
		o.TitleThreshold = defaultThreshold
	}
	if o.BodyThreshold <= 0 {
		o.BodyThreshold = defaultThreshold
	}
	if o.Backend == nil {
		o.Backend = NewBackend()
	}
	return o
}

// Match describes a detected duplicate.
type Match struct {
	Reason Reason
	// Score is the similarity that triggered the match; exact checks
	// report 1.
	Score float64
	// Against is the previously seen item the duplicate matched.
	Against content.Item
}

// Duplicate pairs a rejected item with the matches that rejected it.
type Duplicate struct {
	Item    content.Item
	Matches []Match
}

// Stats counts duplicates by triggering reason. A duplicate may trip
// several checks, so the ByReason total can exceed Duplicates.
type Stats struct {
	Checked    int
	Unique     int
	Duplicates int
	ByReason   map[Reason]int
}

// Result is the outcome of a batch deduplication pass.
type Result struct {
	Unique     []content.Item
	Duplicates []Duplicate
	Stats      Stats
}

type seenTitle struct {
	normalized string
	item       content.Item
}

type seenBody struct {
	body string
	item content.Item
}

// Session accumulates duplicate state across successive Check calls. It
// is not safe for concurrent use.
type Session struct {
	opts Options

	seenURLs   map[string]content.Item
	seenHashes map[string]content.Item
	seenTitles []seenTitle
	seenBodies []seenBody
}

// NewSession returns an empty session configured by opts.
func NewSession(opts Options) *Session {
	return &Session{
		opts:       opts.normalized(),
		seenURLs:   make(map[string]content.Item),
		seenHashes: make(map[string]content.Item),
	}
}

// Check tests item against everything the session has seen. Every
// enabled check runs, so a duplicate carries one match per tripped
// strategy. A unique item is registered into all session caches. A
// duplicate still registers its URL and content hash: a later exact
// copy of a fuzzy duplicate must be caught by identity, not similarity.
func (s *Session) Check(item content.Item) []Match {
	var matches []Match

	normURL := ""
	if s.opts.CheckURL && item.URL != "" {
		normURL = NormalizeURL(item.URL)
		if prior, ok := s.seenURLs[normURL]; ok {
			matches = append(matches, Match{Reason: ReasonURL, Score: 1, Against: prior})
		}
	}

	hash := ""
	if s.opts.CheckHash && item.Body != "" {
		hash = contentHash(item.Body)
		if prior, ok := s.seenHashes[hash]; ok {
			matches = append(matches, Match{Reason: ReasonHash, Score: 1, Against: prior})
		}
	}

	normTitle := ""
	if s.opts.CheckTitle && item.Title != "" {
		normTitle = normalizeTitle(item.Title)
		for _, prior := range s.seenTitles {
			score := TitleSimilarity(normTitle, prior.normalized)
			if score >= s.opts.TitleThreshold {
				matches = append(matches, Match{Reason: ReasonTitle, Score: score, Against: prior.item})
				break
			}
		}
	}

	if s.opts.CheckBody && item.Body != "" {
		for _, prior := range s.seenBodies {
			score := s.opts.Backend.Similarity(item.Body, prior.body)
			if score >= s.opts.BodyThreshold {
				matches = append(matches, Match{Reason: ReasonBody, Score: score, Against: prior.item})
				break
			}
		}
	}

	// Identity keys register for duplicates and uniques alike; the first
	// seen item per key stays the canonical one.
	if normURL != "" {
		if _, ok := s.seenURLs[normURL]; !ok {
			s.seenURLs[normURL] = item
		}
	}
	if hash != "" {
		if _, ok := s.seenHashes[hash]; !ok {
			s.seenHashes[hash] = item
		}
	}

	if len(matches) > 0 {
		return matches
	}

	if normTitle != "" {
		s.seenTitles = append(s.seenTitles, seenTitle{normalized: normTitle, item: item})
	}
	if s.opts.CheckBody && item.Body != "" {
		s.seenBodies = append(s.seenBodies, seenBody{body: item.Body, item: item})
	}
	return nil
}

// Batch deduplicates items in order with a fresh session. The first
// occurrence of each duplicate group survives and unique items keep
// their input order.
func Batch(items []content.Item, opts Options) Result {
	session := NewSession(opts)
	result := Result{
		Stats: Stats{Checked: len(items), ByReason: make(map[Reason]int)},
	}

	for _, item := range items {
		matches := session.Check(item)
		if len(matches) == 0 {
			result.Unique = append(result.Unique, item)
			continue
		}
		result.Duplicates = append(result.Duplicates, Duplicate{Item: item, Matches: matches})
		for _, m := range matches {
			result.Stats.ByReason[m.Reason]++
		}
		if logger := session.opts.Logger; logger != nil {
			logger.Debug("duplicate dropped",
				slog.String("title", item.Title),
				slog.String("reason", string(matches[0].Reason)),
				slog.Int("reasons", len(matches)))
		}
	}

	result.Stats.Unique = len(result.Unique)
	result.Stats.Duplicates = len(result.Duplicates)
	return result
}

// CollapseWindow removes near-duplicate stories published within
// windowHours of each other, keeping the most recent telling of each.
// Items closer together than the window whose titles clear the
// similarity threshold collapse into one.
func CollapseWindow(items []content.Item, windowHours int, opts Options) []content.Item {
	if len(items) < 2 {
		return items
	}
	opts = opts.normalized()
	window := time.Duration(windowHours) * time.Hour

	ordered := make([]content.Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PublishedAt.After(ordered[j].PublishedAt)
	})

	kept := make([]content.Item, 0, len(ordered))
	for _, candidate := range ordered {
		collapsed := false
		for _, existing := range kept {
			gap := existing.PublishedAt.Sub(candidate.PublishedAt)
			if gap < 0 {
				gap = -gap
			}
			if gap > window {
				continue
			}
			if TitleSimilarity(candidate.Title, existing.Title) >= opts.TitleThreshold {
				collapsed = true
				break
			}
		}
		if !collapsed {
			kept = append(kept, candidate)
		}
	}
	return kept
}
