// Package classify assigns topical categories to content items. The
// keyword scorer works out of the box; an optional naive Bayes model can
// be trained from labeled samples and blended in for hybrid decisions.
package classify

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"newsfuse/internal/content"
)

const (
	// minKeywordScore is the floor below which the keyword scorer
	// refuses to commit to a category.
	minKeywordScore = 1.0

	// Blend factors for hybrid classification.
	agreementBoost     = 0.3
	disagreementFactor = 0.8
	defaultMLWeight    = 0.6
)

// Method names reported in results.
const (
	MethodKeyword = "keyword"
	MethodML      = "ml"
	MethodHybrid  = "hybrid"
	MethodNone    = "none"
)

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// Options selects how an item is classified. The zero value means
// hybrid with the default model weight and no extra terms.
type Options struct {
	// Method is keyword, ml, or hybrid. Empty means hybrid.
	Method string
	// MLWeight is the model's share of a hybrid disagreement, in (0, 1).
	// Values outside that range fall back to the default.
	MLWeight float64
	// Extra terms are appended to the item text before scoring.
	Extra []string
}

// Result is a single classification decision.
type Result struct {
	Category   string             `json:"category"`
	Confidence float64            `json:"confidence"`
	Method     string             `json:"method"`
	Scores     map[string]float64 `json:"scores,omitempty"`
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithModel attaches a trained naive Bayes model. Classify uses hybrid
// decisions whenever the model is ready.
func WithModel(model *Model) Option {
	return func(c *Classifier) { c.model = model }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) { c.logger = logger }
}

// Classifier scores text against per-category keyword tiers and,
// when a trained model is attached, blends both signals.
type Classifier struct {
	keywords map[string]KeywordSet
	model    *Model
	logger   *slog.Logger
}

func New(opts ...Option) *Classifier {
	c := &Classifier{keywords: defaultKeywords()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categories returns the known category names sorted alphabetically.
func (c *Classifier) Categories() []string {
	names := make([]string, 0, len(c.keywords))
	for name := range c.keywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddCategory registers a new category vocabulary, replacing any
// existing set with the same name.
func (c *Classifier) AddCategory(name string, set KeywordSet) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("category name is empty")
	}
	if len(set.Primary)+len(set.Secondary)+len(set.Tertiary) == 0 {
		return fmt.Errorf("category %q has no keywords", name)
	}
	c.keywords[name] = set
	return nil
}

// Keywords classifies text using tiered keyword scoring alone.
// Whole-word and whole-phrase hits earn the full tier weight; partial
// phrase hits earn a discounted fraction. Text that clears no category
// falls back to general with zero confidence.
func (c *Classifier) Keywords(text string) Result {
	normalized := normalizeText(text)
	if normalized == "" {
		return Result{Category: FallbackCategory, Method: MethodKeyword}
	}
	padded := " " + normalized + " "
	words := wordSet(normalized)

	scores := make(map[string]float64, len(c.keywords))
	for category, set := range c.keywords {
		score := scoreTier(padded, words, set.Primary, primaryWeight) +
			scoreTier(padded, words, set.Secondary, secondaryWeight) +
			scoreTier(padded, words, set.Tertiary, tertiaryWeight)
		if score > 0 {
			scores[category] = score
		}
	}

	winner, winning, total := "", 0.0, 0.0
	for category, score := range scores {
		total += score
		if score > winning || (score == winning && category < winner) {
			winner, winning = category, score
		}
	}

	if winning < minKeywordScore {
		return Result{Category: FallbackCategory, Method: MethodKeyword, Scores: scores}
	}
	return Result{
		Category:   winner,
		Confidence: winning / total,
		Method:     MethodKeyword,
		Scores:     scores,
	}
}

// ML classifies text with the attached model. It fails when no model is
// attached or the model has not been trained.
func (c *Classifier) ML(text string) (Result, error) {
	if c.model == nil || !c.model.Trained() {
		return Result{}, fmt.Errorf("no trained model attached")
	}
	category, confidence := c.model.Predict(text)
	return Result{Category: category, Confidence: confidence, Method: MethodML}, nil
}

// Hybrid blends keyword and model decisions. Agreement boosts
// confidence; disagreement picks the stronger weighted signal at a
// discount, with mlWeight as the model's share. Weights outside (0, 1)
// fall back to the default. Without a trained model it degrades to
// keyword scoring.
func (c *Classifier) Hybrid(text string, mlWeight float64) Result {
	kw := c.Keywords(text)
	if c.model == nil || !c.model.Trained() {
		return kw
	}

	ml, err := c.ML(text)
	if err != nil {
		return kw
	}

	if kw.Category == ml.Category {
		confidence := kw.Confidence + agreementBoost*ml.Confidence
		if confidence > 1 {
			confidence = 1
		}
		return Result{Category: kw.Category, Confidence: confidence, Method: MethodHybrid, Scores: kw.Scores}
	}

	if mlWeight <= 0 || mlWeight >= 1 {
		mlWeight = defaultMLWeight
	}
	kwStrength := kw.Confidence * (1 - mlWeight)
	mlStrength := ml.Confidence * mlWeight
	chosen := ml
	if kwStrength >= mlStrength {
		chosen = kw
	}
	c.debug("classification disagreement",
		slog.String("keyword", kw.Category),
		slog.String("ml", ml.Category),
		slog.String("chosen", chosen.Category))
	return Result{
		Category:   chosen.Category,
		Confidence: chosen.Confidence * disagreementFactor,
		Method:     MethodHybrid,
		Scores:     kw.Scores,
	}
}

// Classify categorizes an item from its title, body, and any extra
// terms, using the method opts selects.
func (c *Classifier) Classify(item content.Item, opts Options) Result {
	parts := append([]string{item.Title, item.Body}, opts.Extra...)
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return Result{Category: FallbackCategory, Method: MethodNone}
	}

	switch opts.Method {
	case MethodKeyword:
		return c.Keywords(text)
	case MethodML:
		result, err := c.ML(text)
		if err != nil {
			return Result{Category: FallbackCategory, Method: MethodML}
		}
		return result
	default:
		return c.Hybrid(text, opts.MLWeight)
	}
}

// ClassifyBatch classifies every item, writes the winning category onto
// each, and reports aggregate stats.
func (c *Classifier) ClassifyBatch(items []content.Item, opts Options) ([]content.Item, Stats) {
	stats := Stats{
		ByCategory: make(map[string]int),
		ByMethod:   make(map[string]int),
	}
	classified := make([]content.Item, len(items))
	var confidenceSum float64

	for i, item := range items {
		result := c.Classify(item, opts)
		item.Category = result.Category
		classified[i] = item

		stats.Total++
		stats.ByCategory[result.Category]++
		stats.ByMethod[result.Method]++
		confidenceSum += result.Confidence
	}
	if stats.Total > 0 {
		stats.MeanConfidence = confidenceSum / float64(stats.Total)
	}
	return classified, stats
}

// Stats summarizes a batch classification pass.
type Stats struct {
	Total          int            `json:"total"`
	ByCategory     map[string]int `json:"by_category"`
	ByMethod       map[string]int `json:"by_method"`
	MeanConfidence float64        `json:"mean_confidence"`
}

func (c *Classifier) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// scoreTier awards the full weight for each keyword present whole in
// the text and a discounted fraction for multi-word keywords whose
// words only partially appear. Matching is on word boundaries: bare
// substring checks count "art" inside "startup". A whole-phrase hit
// does not also earn the partial fraction for the same keyword.
func scoreTier(padded string, words map[string]struct{}, keywords []string, weight float64) float64 {
	var score float64
	for _, keyword := range keywords {
		if strings.Contains(padded, " "+keyword+" ") {
			score += weight
			continue
		}
		parts := strings.Fields(keyword)
		if len(parts) < 2 {
			continue
		}
		hits := 0
		for _, part := range parts {
			if _, ok := words[part]; ok {
				hits++
			}
		}
		if hits > 0 {
			score += weight * partialFactor * float64(hits) / float64(len(parts))
		}
	}
	return score
}

func normalizeText(text string) string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

func wordSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(normalized) {
		set[word] = struct{}{}
	}
	return set
}
