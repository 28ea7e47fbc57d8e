package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// Tracking parameters stripped during URL normalization. utm_* is matched
// as a prefix.
var trackingParams = map[string]struct{}{
	"fbclid":  {},
	"gclid":   {},
	"msclkid": {},
	"ref":     {},
	"source":  {},
	"from":    {},
}

var (
	punctPattern      = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeURL lowercases the scheme, host, and path and strips tracking
// query parameters, producing a stable identity key. Normalization is
// idempotent; an unparseable URL falls back to plain lowercasing.
func NormalizeURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(raw)
	}

	query := parsed.Query()
	for key := range query {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") {
			query.Del(key)
			continue
		}
		if _, tracked := trackingParams[lower]; tracked {
			query.Del(key)
		}
	}

	normalized := strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host) + strings.ToLower(parsed.Path)
	if encoded := query.Encode(); encoded != "" {
		normalized += "?" + encoded
	}
	return normalized
}

// contentHash fingerprints body text after collapsing whitespace and
// lowercasing. Empty text hashes to the empty string.
func contentHash(text string) string {
	if text == "" {
		return ""
	}
	normalized := whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// TitleSimilarity returns an edit-distance ratio in [0,1] between two
// titles after case folding and punctuation removal.
func TitleSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	ra := []rune(normalizeTitle(a))
	rb := []rune(normalizeTitle(b))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1.0 - float64(editDistance(ra, rb))/float64(longest)
}

func normalizeTitle(title string) string {
	cleaned := punctPattern.ReplaceAllString(strings.ToLower(title), " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))
}

// editDistance computes the Levenshtein distance with a two-row table.
func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
