package classifier

import "github.com/sahoo-ansu/I-MED/internal/models"

// Engine pairs the two scoring strategies behind the Classifier interface.
// They are kept separate: downstream formatting depends on which one ran.
type Engine struct {
	keywords *KeywordScorer
	matcher  *PhraseMatcher
}

func NewEngine(keywords *KeywordScorer, matcher *PhraseMatcher) *Engine {
	return &Engine{
		keywords: keywords,
		matcher:  matcher,
	}
}

// NewDefaultEngine uses the bundled phrase table.
func NewDefaultEngine() *Engine {
	return NewEngine(NewDefaultKeywordScorer(), NewPhraseMatcher())
}

func (e *Engine) Classify(text string) models.ClassificationResult {
	return e.keywords.Classify(text)
}

func (e *Engine) ClassifyFromArray(phrases []string, conditions []*models.Condition) []models.ConditionMatch {
	return e.matcher.ClassifyFromArray(phrases, conditions)
}

// Scores exposes the per-condition keyword scores for logging.
func (e *Engine) Scores(text string) map[string]int {
	return e.keywords.Scores(text)
}
