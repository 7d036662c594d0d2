package intake

import (
	"regexp"
	"strings"

	"github.com/sahoo-ansu/I-MED/internal/models"
)

// Fields holds what could be pulled out of a semi-structured prompt block.
type Fields struct {
	Symptoms    string
	Severity    models.Severity
	PreExisting string
	Age         string
	Gender      string
}

type label struct {
	literal *regexp.Regexp
	pattern *regexp.Regexp
}

var (
	labelSymptoms    = newLabel("Symptoms:")
	labelAge         = newLabel("Age:")
	labelGender      = newLabel("Gender:")
	labelPreExisting = newLabel("Pre-existing conditions:")
	labelSeverity    = newLabel("Severity:")

	knownLabels = []label{labelSymptoms, labelAge, labelGender, labelPreExisting, labelSeverity}

	listSeparators = regexp.MustCompile(`[,;.]+`)
)

// newLabel builds a pattern capturing everything after the label up to the
// next known label or the end of the text.
func newLabel(literal string) label {
	return label{
		literal: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(literal)),
		pattern: regexp.MustCompile(`(?is)\b` + regexp.QuoteMeta(literal) +
			`[ \t]*(.*?)\s*(?:\b(?:symptoms|age|gender|pre-existing conditions|severity):|$)`),
	}
}

// Extract parses a prompt block such as
//
//	Symptoms: runny nose, sore throat
//	Age: 30
//	Severity: severe
//
// Text without a Symptoms label is taken whole as the symptom description.
func Extract(block string) Fields {
	f := Fields{Severity: models.SeverityNormal}

	if containsLabel(block, labelSymptoms) {
		f.Symptoms = labelSymptoms.capture(block)
	} else {
		f.Symptoms = strings.TrimSpace(block)
	}

	if sev := labelSeverity.capture(block); sev != "" {
		f.Severity = models.ParseSeverity(sev)
	}
	f.PreExisting = labelPreExisting.capture(block)
	f.Age = labelAge.capture(block)
	f.Gender = labelGender.capture(block)

	return f
}

func (l label) capture(block string) string {
	if m := l.pattern.FindStringSubmatch(block); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
	}
	if !containsLabel(block, l) {
		return ""
	}
	return l.fromLines(block)
}

// fromLines handles input where the value sits on the label's line and may
// wrap onto the next one.
func (l label) fromLines(block string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		loc := l.literal.FindStringIndex(line)
		if loc == nil {
			continue
		}
		value := strings.TrimSpace(line[loc[1]:])
		if hasAnyLabel(value) {
			value = ""
		}
		if i+1 < len(lines) && !hasAnyLabel(lines[i+1]) {
			value = strings.TrimSpace(value + " " + strings.TrimSpace(lines[i+1]))
		}
		return value
	}
	return ""
}

func containsLabel(text string, l label) bool {
	return l.literal.MatchString(text)
}

func hasAnyLabel(line string) bool {
	for _, l := range knownLabels {
		if containsLabel(line, l) {
			return true
		}
	}
	return false
}

// SplitSymptoms turns free text into a symptom phrase list. Comma, semicolon
// and period separate phrases; a single long run-on sentence falls back to
// its words longer than three characters.
func SplitSymptoms(text string) []string {
	var phrases []string
	for _, part := range listSeparators.Split(text, -1) {
		if p := strings.TrimSpace(part); p != "" {
			phrases = append(phrases, p)
		}
	}

	if len(phrases) <= 1 && len(text) > 15 {
		phrases = phrases[:0]
		for _, word := range strings.Fields(text) {
			if len(word) > 3 {
				phrases = append(phrases, word)
			}
		}
	}

	return phrases
}
