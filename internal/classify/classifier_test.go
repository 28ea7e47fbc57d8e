package classify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsfuse/internal/content"
)

func TestKeywordsPicksStrongestCategory(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "technology",
			text: "Startup ships new machine learning software for smartphone security",
			want: "technology",
		},
		{
			name: "sports",
			text: "Underdogs win the championship after a dramatic playoffs final at the stadium",
			want: "sports",
		},
		{
			name: "health",
			text: "FDA approval expected for the new vaccine after a successful clinical trial",
			want: "health",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Keywords(tt.text)
			assert.Equal(t, tt.want, result.Category)
			assert.Greater(t, result.Confidence, 0.0)
			assert.Equal(t, MethodKeyword, result.Method)
		})
	}
}

func TestKeywordsFallsBackToGeneral(t *testing.T) {
	c := New()

	result := c.Keywords("plaid ceramic umbrella weather mild today")
	assert.Equal(t, FallbackCategory, result.Category)
	assert.Zero(t, result.Confidence)

	empty := c.Keywords("   ")
	assert.Equal(t, FallbackCategory, empty.Category)
}

func TestKeywordsHigherTierOutweighsLower(t *testing.T) {
	c := New()

	// One primary technology hit against one tertiary business hit.
	result := c.Keywords("the cybersecurity industry")
	require.Equal(t, "technology", result.Category)
	assert.Greater(t, result.Scores["technology"], result.Scores["business"])
}

func TestKeywordsPartialPhraseDiscounted(t *testing.T) {
	c := New()

	full := c.Keywords("researchers advance machine learning daily")
	partial := c.Keywords("researchers advance learning daily")
	assert.Greater(t, full.Scores["technology"], partial.Scores["technology"])
}

func TestConfidenceIsShareOfTotal(t *testing.T) {
	c := New()

	result := c.Keywords("election campaign for senate with a stock market angle")
	require.NotEqual(t, FallbackCategory, result.Category)

	var total float64
	for _, score := range result.Scores {
		total += score
	}
	assert.InDelta(t, result.Scores[result.Category]/total, result.Confidence, 1e-9)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestAddCategory(t *testing.T) {
	c := New()

	err := c.AddCategory("Gaming", KeywordSet{
		Primary:   []string{"esports", "speedrun"},
		Secondary: []string{"console"},
	})
	require.NoError(t, err)
	assert.Contains(t, c.Categories(), "gaming")

	result := c.Keywords("the esports speedrun scene on console")
	assert.Equal(t, "gaming", result.Category)

	assert.Error(t, c.AddCategory("", KeywordSet{Primary: []string{"x"}}))
	assert.Error(t, c.AddCategory("empty", KeywordSet{}))
}

func TestModelTrainingFloor(t *testing.T) {
	model := NewModel()

	few := []Sample{
		{Text: "software programming code", Category: "technology"},
		{Text: "match goal score", Category: "sports"},
	}
	assert.Error(t, model.Train(few))
	assert.False(t, model.Trained())

	single := make([]Sample, 0, 25)
	for i := 0; i < 25; i++ {
		single = append(single, Sample{Text: fmt.Sprintf("software release number %d", i), Category: "technology"})
	}
	assert.Error(t, model.Train(single))
}

func TestModelPredict(t *testing.T) {
	model := NewModel()
	require.NoError(t, model.Train(trainingSamples()))
	require.True(t, model.Trained())
	assert.GreaterOrEqual(t, model.SampleCount(), minTrainingSamples)

	category, confidence := model.Predict("new software programming framework for developers")
	assert.Equal(t, "technology", category)
	assert.Greater(t, confidence, 0.5)

	category, confidence = model.Predict("")
	assert.Equal(t, FallbackCategory, category)
	assert.Zero(t, confidence)
}

func TestHybridAgreementBoostsConfidence(t *testing.T) {
	model := NewModel()
	require.NoError(t, model.Train(trainingSamples()))
	c := New(WithModel(model))

	text := "startup software programming framework wins developers over"
	kw := c.Keywords(text)
	require.Equal(t, "technology", kw.Category)

	hybrid := c.Hybrid(text, 0)
	assert.Equal(t, "technology", hybrid.Category)
	assert.Equal(t, MethodHybrid, hybrid.Method)
	assert.GreaterOrEqual(t, hybrid.Confidence, kw.Confidence)
	assert.LessOrEqual(t, hybrid.Confidence, 1.0)
}

func TestHybridWithoutModelDegradesToKeywords(t *testing.T) {
	c := New()

	result := c.Hybrid("quarterly results beat revenue expectations", 0)
	assert.Equal(t, "business", result.Category)
	assert.Equal(t, MethodKeyword, result.Method)
}

func TestHybridWeightResolvesDisagreement(t *testing.T) {
	model := NewModel()
	require.NoError(t, model.Train(trainingSamples()))
	c := New(WithModel(model))

	// Strong sports keywords over a body the model reads as technology.
	text := "championship playoffs final software programming framework for developers released"
	kw := c.Keywords(text)
	ml, err := c.ML(text)
	require.NoError(t, err)
	require.NotEqual(t, kw.Category, ml.Category)

	keywordHeavy := c.Hybrid(text, 0.01)
	modelHeavy := c.Hybrid(text, 0.99)
	assert.Equal(t, kw.Category, keywordHeavy.Category)
	assert.Equal(t, ml.Category, modelHeavy.Category)
	assert.Equal(t, MethodHybrid, keywordHeavy.Method)
}

func TestClassifyMethodSelection(t *testing.T) {
	model := NewModel()
	require.NoError(t, model.Train(trainingSamples()))
	c := New(WithModel(model))

	item := content.Item{Title: "Startup ships machine learning software", Body: "Developers adopt the new framework."}

	kw := c.Classify(item, Options{Method: MethodKeyword})
	assert.Equal(t, MethodKeyword, kw.Method)
	assert.Equal(t, "technology", kw.Category)

	ml := c.Classify(item, Options{Method: MethodML})
	assert.Equal(t, MethodML, ml.Method)
	assert.Equal(t, "technology", ml.Category)

	hybrid := c.Classify(item, Options{})
	assert.Equal(t, MethodHybrid, hybrid.Method)
}

func TestClassifyMLWithoutModelFallsBack(t *testing.T) {
	c := New()

	result := c.Classify(content.Item{Title: "Championship final tonight"}, Options{Method: MethodML})
	assert.Equal(t, FallbackCategory, result.Category)
	assert.Equal(t, MethodML, result.Method)
	assert.Zero(t, result.Confidence)
}

func TestClassifyExtraTermsSteerCategory(t *testing.T) {
	c := New()

	item := content.Item{Title: "Quiet afternoon", Body: "Nothing much happened."}
	plain := c.Classify(item, Options{Method: MethodKeyword})
	require.Equal(t, FallbackCategory, plain.Category)

	steered := c.Classify(item, Options{Method: MethodKeyword, Extra: []string{"championship", "playoffs"}})
	assert.Equal(t, "sports", steered.Category)
}

func TestClassifyBatch(t *testing.T) {
	c := New()
	items := []content.Item{
		{Title: "Startup raises funding for machine learning software", Body: "The cybersecurity platform grew fast."},
		{Title: "Championship final heads to playoffs", Body: "The team scored a late goal in the stadium."},
		{Title: "Quiet afternoon", Body: "Nothing much happened."},
	}

	classified, stats := c.ClassifyBatch(items, Options{})

	require.Len(t, classified, 3)
	assert.Equal(t, "technology", classified[0].Category)
	assert.Equal(t, "sports", classified[1].Category)
	assert.Equal(t, FallbackCategory, classified[2].Category)

	// Input slice is untouched.
	assert.Empty(t, items[0].Category)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.ByCategory["technology"])
	assert.Equal(t, 1, stats.ByCategory[FallbackCategory])
	assert.Greater(t, stats.MeanConfidence, 0.0)
}

func trainingSamples() []Sample {
	techDocs := []string{
		"software programming framework released for developers",
		"machine learning model improves software accuracy",
		"startup builds cybersecurity software platform",
		"new smartphone hardware with faster processor",
		"cloud software update fixes encryption bug",
		"programming language gains software tooling",
		"semiconductor factory boosts chip hardware output",
		"artificial intelligence software writes code",
		"blockchain software secures data transfers",
		"robot hardware runs new software stack",
		"developers adopt software testing framework",
		"encryption software protects smartphone data",
	}
	sportsDocs := []string{
		"team wins championship after tense final",
		"coach praises player after tournament victory",
		"late goal sends match into playoffs",
		"stadium crowd celebrates league title",
		"olympics medal count rises for sprinters",
		"grand slam champion defends tournament crown",
		"season opener ends in narrow defeat",
		"player breaks scoring record in final",
		"world cup squad announced by coach",
		"playoffs race tightens after weekend matches",
		"club signs star player before season",
		"championship rematch set for the stadium",
	}

	samples := make([]Sample, 0, len(techDocs)+len(sportsDocs))
	for _, doc := range techDocs {
		samples = append(samples, Sample{Text: doc, Category: "technology"})
	}
	for _, doc := range sportsDocs {
		samples = append(samples, Sample{Text: doc, Category: "sports"})
	}
	return samples
}
