package classify

// FallbackCategory is assigned when no category scores high enough.
const FallbackCategory = "general"

// KeywordSet holds category vocabulary in three confidence tiers.
// Primary terms are strong signals, secondary terms are supporting,
// and tertiary terms only nudge the score.
type KeywordSet struct {
	Primary   []string
	Secondary []string
	Tertiary  []string
}

const (
	primaryWeight   = 3.0
	secondaryWeight = 2.0
	tertiaryWeight  = 1.0

	// partialFactor discounts substring matches against whole-word hits.
	partialFactor = 0.5
)

func defaultKeywords() map[string]KeywordSet {
	return map[string]KeywordSet{
		"technology": {
			Primary:   []string{"software", "hardware", "programming", "startup", "artificial intelligence", "machine learning", "cybersecurity", "blockchain", "smartphone", "semiconductor"},
			Secondary: []string{"app", "cloud", "data", "internet", "robot", "algorithm", "encryption", "processor", "gadget", "silicon"},
			Tertiary:  []string{"tech", "digital", "online", "device", "platform", "network", "code", "chip"},
		},
		"business": {
			Primary:   []string{"earnings", "revenue", "acquisition", "merger", "ipo", "stock market", "quarterly results", "shareholders", "venture capital", "bankruptcy"},
			Secondary: []string{"profit", "investor", "market", "trade", "economy", "inflation", "startup funding", "valuation", "dividend", "ceo"},
			Tertiary:  []string{"company", "business", "financial", "sales", "growth", "deal", "industry", "corporate"},
		},
		"politics": {
			Primary:   []string{"election", "parliament", "congress", "legislation", "president", "prime minister", "senate", "referendum", "campaign", "ballot"},
			Secondary: []string{"government", "policy", "vote", "senator", "minister", "diplomat", "treaty", "sanctions", "coalition", "opposition"},
			Tertiary:  []string{"political", "law", "state", "federal", "party", "debate", "reform", "bill"},
		},
		"sports": {
			Primary:   []string{"championship", "tournament", "olympics", "world cup", "playoffs", "grand slam", "league title", "premier league", "super bowl", "medal"},
			Secondary: []string{"match", "team", "player", "coach", "goal", "score", "season", "victory", "defeat", "stadium"},
			Tertiary:  []string{"game", "win", "sport", "fan", "race", "final", "record", "club"},
		},
		"entertainment": {
			Primary:   []string{"box office", "film festival", "album release", "premiere", "blockbuster", "oscars", "grammy", "streaming series", "celebrity", "concert tour"},
			Secondary: []string{"movie", "actor", "actress", "singer", "director", "television", "netflix", "hollywood", "music", "trailer"},
			Tertiary:  []string{"show", "film", "song", "star", "fans", "studio", "release", "episode"},
		},
		"health": {
			Primary:   []string{"vaccine", "clinical trial", "epidemic", "pandemic", "diagnosis", "public health", "fda approval", "outbreak", "surgery", "chronic disease"},
			Secondary: []string{"hospital", "doctor", "patient", "treatment", "medicine", "virus", "cancer", "mental health", "nutrition", "therapy"},
			Tertiary:  []string{"health", "medical", "drug", "disease", "symptom", "care", "wellness", "clinic"},
		},
		"science": {
			Primary:   []string{"research study", "discovery", "quantum", "genome", "particle physics", "climate change", "space telescope", "mars rover", "fossil", "peer reviewed"},
			Secondary: []string{"scientist", "experiment", "laboratory", "nasa", "astronomy", "biology", "chemistry", "physics", "geology", "species"},
			Tertiary:  []string{"science", "study", "data", "theory", "space", "cell", "energy", "climate"},
		},
		"world": {
			Primary:   []string{"united nations", "international summit", "border conflict", "humanitarian crisis", "peace talks", "refugee", "ceasefire", "geopolitical", "foreign ministry", "embassy"},
			Secondary: []string{"global", "crisis", "conflict", "nation", "treaty", "alliance", "invasion", "protest", "migration", "territory"},
			Tertiary:  []string{"world", "country", "region", "international", "border", "capital", "leader", "talks"},
		},
	}
}
