package classifier

import (
	"sort"
	"strings"

	"github.com/sahoo-ansu/I-MED/internal/models"
)

// PhraseMatcher ranks stored conditions by the share of input phrases that
// overlap one of their keywords.
type PhraseMatcher struct{}

func NewPhraseMatcher() *PhraseMatcher {
	return &PhraseMatcher{}
}

// ClassifyFromArray scores each condition as matched/len(phrases). A phrase
// matches when it contains a keyword or a keyword contains it. Conditions
// scoring zero are dropped; the rest are sorted best first and keep their
// input order on ties.
func (m *PhraseMatcher) ClassifyFromArray(phrases []string, conditions []*models.Condition) []models.ConditionMatch {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	if len(lowered) == 0 {
		return nil
	}

	var matches []models.ConditionMatch
	for _, cond := range conditions {
		if cond == nil {
			continue
		}
		count := 0
		for _, phrase := range lowered {
			if overlapsAny(phrase, cond.SymptomKeywords) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		matches = append(matches, models.ConditionMatch{
			Condition:  cond,
			MatchScore: float64(count) / float64(len(lowered)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	return matches
}

func overlapsAny(phrase string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(phrase, kw) || strings.Contains(kw, phrase) {
			return true
		}
	}
	return false
}
