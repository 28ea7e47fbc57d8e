package classify

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jbrukh/bayesian"
)

// Training floor. Below it the model refuses to train rather than
// produce noise.
const (
	minTrainingSamples    = 20
	minTrainingCategories = 2
)

// Sample is one labeled training document.
type Sample struct {
	Text     string `json:"text" yaml:"text"`
	Category string `json:"category" yaml:"category"`
}

// Model is a naive Bayes text classifier trained from labeled samples.
// Training replaces the underlying classifier atomically, so Predict
// may run concurrently with Train.
type Model struct {
	mu         sync.RWMutex
	classifier *bayesian.Classifier
	classes    []bayesian.Class
	samples    int
}

func NewModel() *Model {
	return &Model{}
}

// Trained reports whether the model has been successfully trained.
func (m *Model) Trained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.classifier != nil
}

// SampleCount returns the number of samples used by the last training.
func (m *Model) SampleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples
}

// Train fits the model on the given samples. It fails when there are
// too few samples or fewer than two distinct categories, leaving any
// previously trained state intact.
func (m *Model) Train(samples []Sample) error {
	usable := make([]Sample, 0, len(samples))
	byCategory := make(map[string]int)
	for _, sample := range samples {
		if sample.Text == "" || sample.Category == "" {
			continue
		}
		usable = append(usable, sample)
		byCategory[sample.Category]++
	}

	if len(usable) < minTrainingSamples {
		return fmt.Errorf("need at least %d labeled samples, got %d", minTrainingSamples, len(usable))
	}
	if len(byCategory) < minTrainingCategories {
		return fmt.Errorf("need at least %d distinct categories, got %d", minTrainingCategories, len(byCategory))
	}

	classes := make([]bayesian.Class, 0, len(byCategory))
	for category := range byCategory {
		classes = append(classes, bayesian.Class(category))
	}

	classifier := bayesian.NewClassifier(classes...)
	for _, sample := range usable {
		tokens := tokenizeDocument(sample.Text)
		if len(tokens) == 0 {
			continue
		}
		classifier.Learn(tokens, bayesian.Class(sample.Category))
	}

	m.mu.Lock()
	m.classifier = classifier
	m.classes = classes
	m.samples = len(usable)
	m.mu.Unlock()
	return nil
}

// Predict returns the most likely category for text along with its
// posterior probability. An untrained model or empty document yields
// the fallback category with zero confidence.
func (m *Model) Predict(text string) (string, float64) {
	m.mu.RLock()
	classifier := m.classifier
	classes := m.classes
	m.mu.RUnlock()

	if classifier == nil {
		return FallbackCategory, 0
	}
	tokens := tokenizeDocument(text)
	if len(tokens) == 0 {
		return FallbackCategory, 0
	}

	scores, best, _ := classifier.ProbScores(tokens)
	if best < 0 || best >= len(classes) {
		return FallbackCategory, 0
	}
	return string(classes[best]), scores[best]
}

func tokenizeDocument(text string) []string {
	normalized := normalizeText(text)
	if normalized == "" {
		return nil
	}
	fields := make([]string, 0, 32)
	for _, word := range strings.Fields(normalized) {
		if len(word) > 2 {
			fields = append(fields, word)
		}
	}
	return fields
}
