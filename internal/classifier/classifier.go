package classifier

import (
	"strings"

	"github.com/sahoo-ansu/I-MED/internal/models"
)

// Classifier scores symptom input against the condition taxonomy. Classify
// works from raw text with the bundled phrase table; ClassifyFromArray ranks
// stored conditions for a pre-split symptom list.
type Classifier interface {
	Classify(text string) models.ClassificationResult
	ClassifyFromArray(phrases []string, conditions []*models.Condition) []models.ConditionMatch
}

// ConditionPhrases lists the characteristic phrases of one condition.
type ConditionPhrases struct {
	Condition string
	Phrases   []string
}

// BonusRule adds Points to Condition when every phrase in All is present.
type BonusRule struct {
	Condition string
	All       []string
	Points    int
}

// DefaultPhrases is the bundled phrase table. Order matters: it breaks ties.
var DefaultPhrases = []ConditionPhrases{
	{"COLD", []string{
		"runny nose", "stuffy nose", "sore throat", "sneezing", "congestion",
		"post nasal drip", "mild fever", "cold symptoms", "rhinitis", "nasal discharge",
	}},
	{"FLU", []string{
		"flu", "influenza", "high fever", "body aches", "muscle aches", "chills",
		"fatigue", "weakness", "fever and aches", "flu symptoms", "severe fatigue",
	}},
	{"HEADACHE", []string{
		"headache", "head pain", "head ache", "pressure in head", "temple pain",
		"forehead pain", "tension headache", "throbbing pain",
	}},
	{"MIGRAINE", []string{
		"migraine", "severe headache", "throbbing headache", "light sensitivity",
		"sound sensitivity", "nausea with headache", "visual aura", "one sided headache",
	}},
	{"STOMACHACHE", []string{
		"stomach ache", "stomach pain", "abdominal pain", "belly pain", "indigestion",
		"heartburn", "acid reflux", "upset stomach", "digestive issues",
	}},
	{"ALLERGIES", []string{
		"allergies", "seasonal allergies", "hay fever", "sneezing", "itchy eyes",
		"watery eyes", "runny nose allergies", "pollen", "allergic rhinitis",
	}},
}

var DefaultBonusRules = []BonusRule{
	{Condition: "COLD", All: []string{"runny nose", "sore throat"}, Points: 3},
	{Condition: "FLU", All: []string{"fever", "body aches"}, Points: 3},
	{Condition: "MIGRAINE", All: []string{"throbbing", "headache"}, Points: 2},
}

// KeywordScorer implements the weighted phrase scoring used when the bundled
// knowledge base is authoritative.
type KeywordScorer struct {
	phrases []ConditionPhrases
	bonuses []BonusRule
}

func NewKeywordScorer(phrases []ConditionPhrases, bonuses []BonusRule) *KeywordScorer {
	return &KeywordScorer{
		phrases: phrases,
		bonuses: bonuses,
	}
}

func NewDefaultKeywordScorer() *KeywordScorer {
	return NewKeywordScorer(DefaultPhrases, DefaultBonusRules)
}

// Classify picks the highest scoring condition. Each phrase found adds its
// word count; bonus rules add on top. Equal scores go to the condition that
// appears first in the table.
func (s *KeywordScorer) Classify(text string) models.ClassificationResult {
	scores, matched := s.score(strings.ToLower(text))

	best := models.ClassificationResult{Condition: models.UnknownCondition}
	for _, name := range s.order() {
		if score := scores[name]; score > best.Score {
			best = models.ClassificationResult{
				Condition:    name,
				Score:        score,
				MatchedTerms: matched[name],
			}
		}
	}

	return best
}

// Scores returns every non-zero score, mostly useful for logging.
func (s *KeywordScorer) Scores(text string) map[string]int {
	scores, _ := s.score(strings.ToLower(text))
	return scores
}

func (s *KeywordScorer) score(lower string) (map[string]int, map[string][]string) {
	scores := make(map[string]int, len(s.phrases))
	matched := make(map[string][]string, len(s.phrases))

	for _, cp := range s.phrases {
		for _, phrase := range cp.Phrases {
			if strings.Contains(lower, phrase) {
				scores[cp.Condition] += len(strings.Fields(phrase))
				matched[cp.Condition] = append(matched[cp.Condition], phrase)
			}
		}
	}

	for _, rule := range s.bonuses {
		if containsAll(lower, rule.All) {
			scores[rule.Condition] += rule.Points
		}
	}

	return scores, matched
}

// order is the table order followed by conditions that only appear in bonus
// rules.
func (s *KeywordScorer) order() []string {
	seen := make(map[string]struct{}, len(s.phrases))
	names := make([]string, 0, len(s.phrases))
	for _, cp := range s.phrases {
		if _, ok := seen[cp.Condition]; !ok {
			seen[cp.Condition] = struct{}{}
			names = append(names, cp.Condition)
		}
	}
	for _, rule := range s.bonuses {
		if _, ok := seen[rule.Condition]; !ok {
			seen[rule.Condition] = struct{}{}
			names = append(names, rule.Condition)
		}
	}
	return names
}

func containsAll(text string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return len(terms) > 0
}
