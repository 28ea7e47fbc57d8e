// Package content defines the canonical content item shared by every
// pipeline stage.
//
// Source clients produce Items through their own canonicalizers; downstream
// stages (dedup, classify, display) only ever see this type.
package content

import (
	"sort"
	"time"
)

// SourceType identifies the kind of provider an item came from.
type SourceType string

const (
	SourceNews   SourceType = "news"
	SourceReddit SourceType = "reddit"
	SourceRSS    SourceType = "rss"
)

// AllSourceTypes lists every known source type in priority order.
func AllSourceTypes() []SourceType {
	return []SourceType{SourceNews, SourceReddit, SourceRSS}
}

// Priority ranks source types for merged views. Higher wins.
func (s SourceType) Priority() int {
	switch s {
	case SourceNews:
		return 3
	case SourceRSS:
		return 2
	case SourceReddit:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	switch s {
	case SourceNews, SourceReddit, SourceRSS:
		return true
	}
	return false
}

// Item is the unified content record.
//
// URL acts as the identity key for exact-match deduplication. Category is
// empty until the classifier fills it; Score and Engagement are
// provider-specific popularity signals (zero when the provider has none).
type Item struct {
	Title       string     `json:"title"`
	Body        string     `json:"body,omitempty"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	SourceType  SourceType `json:"source_type"`
	PublishedAt time.Time  `json:"published_at"`
	Author      string     `json:"author,omitempty"`
	Category    string     `json:"category,omitempty"`
	Score       int        `json:"score,omitempty"`
	Engagement  int        `json:"engagement,omitempty"`
}

// Identifiable reports whether the item carries enough identity to survive
// canonicalization. Items with neither URL nor title are dropped at the
// source-client boundary.
func (i Item) Identifiable() bool {
	return i.URL != "" || i.Title != ""
}

// SortByScore orders items by score descending, breaking ties with the most
// recent publication time.
func SortByScore(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Score != items[b].Score {
			return items[a].Score > items[b].Score
		}
		return items[a].PublishedAt.After(items[b].PublishedAt)
	})
}

// SortByPriority orders items by source-type priority descending, then by
// publication time descending.
func SortByPriority(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		pa, pb := items[a].SourceType.Priority(), items[b].SourceType.Priority()
		if pa != pb {
			return pa > pb
		}
		return items[a].PublishedAt.After(items[b].PublishedAt)
	})
}

// FilterSince returns the items published at or after cutoff, preserving
// input order.
func FilterSince(items []Item, cutoff time.Time) []Item {
	recent := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.PublishedAt.Before(cutoff) {
			recent = append(recent, it)
		}
	}
	return recent
}
