// Package display provides terminal output formatting for newsfuse.
package display

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"newsfuse/internal/classify"
	"newsfuse/internal/content"
	"newsfuse/internal/dedup"
)

const separator = " • "

// TerminalFormatter formats content items for terminal display.
type TerminalFormatter struct{}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{}
}

// FormatItem formats a single content item for display.
func (f *TerminalFormatter) FormatItem(item content.Item) string {
	var lines []string

	// Header: [SOURCE] Title
	header := fmt.Sprintf("[%s] %s", strings.ToUpper(string(item.SourceType)), item.Title)
	lines = append(lines, header)

	// Provenance, author, and timestamp
	meta := item.Source
	if item.Author != "" {
		meta += separator + "by " + item.Author
	}
	meta += separator + f.FormatTimestamp(item.PublishedAt)
	lines = append(lines, "  "+meta)

	if item.Category != "" {
		lines = append(lines, "  category: "+item.Category)
	}

	if stats := f.formatPopularity(item); stats != "" {
		lines = append(lines, "  "+stats)
	}

	if item.Body != "" {
		lines = append(lines, "  "+f.TruncateText(item.Body, 200))
	}

	if item.URL != "" {
		lines = append(lines, "  "+item.URL)
	}

	return strings.Join(lines, "\n") + "\n"
}

// formatPopularity formats score and engagement into a single line.
func (f *TerminalFormatter) formatPopularity(item content.Item) string {
	var parts []string

	if item.Score > 0 {
		parts = append(parts, fmt.Sprintf("%d points", item.Score))
	}
	if item.Engagement > 0 {
		parts = append(parts, fmt.Sprintf("%d comments", item.Engagement))
	}

	return strings.Join(parts, separator)
}

// FormatFeed formats multiple content items for display.
func (f *TerminalFormatter) FormatFeed(items []content.Item) string {
	if len(items) == 0 {
		return "No items to display.\n"
	}

	var formatted []string
	for _, item := range items {
		formatted = append(formatted, f.FormatItem(item))
	}

	return strings.Join(formatted, "\n---\n\n")
}

// FormatDedupStats summarizes a deduplication pass in one line per reason.
func (f *TerminalFormatter) FormatDedupStats(stats dedup.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deduplication: %d checked, %d unique, %d removed\n",
		stats.Checked, stats.Unique, stats.Duplicates)

	reasons := make([]string, 0, len(stats.ByReason))
	for reason := range stats.ByReason {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(&b, "  %s: %d\n", reason, stats.ByReason[dedup.Reason(reason)])
	}
	return b.String()
}

// FormatClassifyStats summarizes a classification pass by category.
func (f *TerminalFormatter) FormatClassifyStats(stats classify.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classification: %d items, mean confidence %.2f\n",
		stats.Total, stats.MeanConfidence)

	categories := make([]string, 0, len(stats.ByCategory))
	for category := range stats.ByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(&b, "  %s: %d\n", category, stats.ByCategory[category])
	}
	return b.String()
}

// FormatTimestamp formats a timestamp as relative time.
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// pluralize returns "N unit ago" or "N units ago" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// TruncateText truncates text to maxLen, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return text[:maxLen-3] + "..."
}
