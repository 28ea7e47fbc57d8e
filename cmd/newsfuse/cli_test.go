// Command wiring tests. These execute the cobra tree in process and
// never reach the network: argument and flag validation fails before
// any source client is built.
package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"newsfuse/internal/content"
	"newsfuse/internal/dedup"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLI_VersionFlag(t *testing.T) {
	stdout, _, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "newsfuse version") {
		t.Errorf("user should see the version string, got: %s", stdout)
	}
}

func TestCLI_HelpListsSubcommands(t *testing.T) {
	stdout, _, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, sub := range []string{"search", "trending", "topics", "recent", "status"} {
		if !strings.Contains(stdout, sub) {
			t.Errorf("help should list the %q subcommand", sub)
		}
	}
}

func TestCLI_SearchRequiresQuery(t *testing.T) {
	_, _, err := runCLI(t, "search")
	if err == nil {
		t.Fatal("search without a query should fail")
	}
}

func TestCLI_SearchRejectsUnknownSource(t *testing.T) {
	_, _, err := runCLI(t, "search", "golang", "--sources", "telegraph")
	if err == nil {
		t.Fatal("unknown source should fail")
	}
	if !strings.Contains(err.Error(), "telegraph") {
		t.Errorf("error should name the bad source, got: %v", err)
	}
}

func TestCLI_TrendingRequiresTopics(t *testing.T) {
	_, _, err := runCLI(t, "trending")
	if err == nil {
		t.Fatal("trending without topics should fail")
	}
}

func TestCLI_SearchRejectsUnknownMethod(t *testing.T) {
	_, _, err := runCLI(t, "search", "golang", "--method", "oracle")
	if err == nil {
		t.Fatal("unknown classification method should fail")
	}
	if !strings.Contains(err.Error(), "oracle") {
		t.Errorf("error should name the bad method, got: %v", err)
	}
}

func TestParseMethod(t *testing.T) {
	for _, raw := range []string{"", "keyword", "ML", " hybrid "} {
		if _, err := parseMethod(raw); err != nil {
			t.Errorf("method %q should be accepted, got %v", raw, err)
		}
	}
	if _, err := parseMethod("bayes"); err == nil {
		t.Error("unknown method should fail")
	}
}

func TestApplyDedupCollapsesWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	newest := content.Item{Title: "Summit reaches climate deal", URL: "https://a.example/1", PublishedAt: base}
	rerun := content.Item{Title: "Summit reaches a climate deal", URL: "https://b.example/2", PublishedAt: base.Add(-2 * time.Hour)}
	outside := content.Item{Title: "Summit reaches climate deal!", URL: "https://c.example/3", PublishedAt: base.Add(-30 * time.Hour)}

	unique, stats := applyDedup([]content.Item{newest, rerun, outside}, dedup.DefaultOptions(), 24)

	if len(unique) != 2 {
		t.Fatalf("the rerun inside the window should collapse, got %d items", len(unique))
	}
	if unique[0].URL != newest.URL || unique[1].URL != outside.URL {
		t.Errorf("newest item per window should survive, got %v and %v", unique[0].URL, unique[1].URL)
	}
	if stats.Checked != 3 || stats.Unique != 2 || stats.Duplicates != 1 {
		t.Errorf("stats should reflect the collapsed item: %+v", stats)
	}

	// Without a window the title check is timeless and all three collapse.
	all, _ := applyDedup([]content.Item{newest, rerun, outside}, dedup.DefaultOptions(), 0)
	if len(all) != 1 {
		t.Errorf("zero window should match titles regardless of age, got %d items", len(all))
	}
}

func TestParseSources(t *testing.T) {
	sources, err := parseSources("news, RSS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected two sources, got %d", len(sources))
	}

	if empty, err := parseSources(""); err != nil || empty != nil {
		t.Errorf("empty selection should mean all sources, got %v, %v", empty, err)
	}

	if _, err := parseSources("myspace"); err == nil {
		t.Error("invalid source should fail")
	}
}
