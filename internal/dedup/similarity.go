package dedup

import (
	"math"
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`\w+`)

// Backend computes a similarity score in [0,1] between two body texts.
//
// TFIDF is the default; Jaccard is the cheap fallback with the same
// threshold semantics. Both are symmetric and return 1 for identical
// non-empty inputs.
type Backend interface {
	Similarity(a, b string) float64
	Name() string
}

// NewBackend returns the preferred backend.
func NewBackend() Backend {
	return TFIDF{}
}

// TFIDF scores body similarity as the cosine of term-frequency vectors
// weighted by smoothed inverse document frequency over the pair.
type TFIDF struct{}

// Name identifies the backend in statistics.
func (TFIDF) Name() string { return "tfidf" }

// Similarity computes the weighted cosine similarity of a and b.
func (TFIDF) Similarity(a, b string) float64 {
	tokensA := tokenize(a)
	tokensB := tokenize(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	tfA := termFrequencies(tokensA)
	tfB := termFrequencies(tokensB)

	// Smoothed IDF over the two-document corpus, sklearn-style:
	// ln((1+n)/(1+df)) + 1 with n=2.
	idf := func(term string) float64 {
		df := 0.0
		if _, ok := tfA[term]; ok {
			df++
		}
		if _, ok := tfB[term]; ok {
			df++
		}
		return math.Log(3.0/(1.0+df)) + 1.0
	}

	var dot, normA, normB float64
	for term, fa := range tfA {
		w := idf(term)
		wa := fa * w
		normA += wa * wa
		if fb, ok := tfB[term]; ok {
			dot += wa * (fb * w)
		}
	}
	for term, fb := range tfB {
		wb := fb * idf(term)
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Jaccard scores body similarity as word-set intersection over union.
type Jaccard struct{}

// Name identifies the backend in statistics.
func (Jaccard) Name() string { return "jaccard" }

// Similarity computes the Jaccard index of the two token sets.
func (Jaccard) Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range tokenize(text) {
		set[token] = struct{}{}
	}
	return set
}

func termFrequencies(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		tf[token]++
	}
	for token := range tf {
		tf[token] /= float64(len(tokens))
	}
	return tf
}
