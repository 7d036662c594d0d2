package intake

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type Reason string

const (
	ReasonTooShort       Reason = "too_short"
	ReasonRandomToken    Reason = "random_token"
	ReasonConversational Reason = "conversational"
	ReasonTooFewWords    Reason = "too_few_words"
	ReasonNoMedicalTerms Reason = "no_medical_terms"
)

// ValidationResult reports whether text looks like a symptom description.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason Reason `json:"reason,omitempty"`
}

var (
	randomToken = regexp.MustCompile(`^[a-z]{1,3}[0-9]*$`)
	whitespace  = regexp.MustCompile(`\s+`)

	conversationalPhrases = []string{
		"hey", "hello", "hi ", "how are you", "what are you", "what is this",
		"test", "testing", "just testing", "asdf", "qwerty", "upto",
	}

	medicalTerms = []string{
		"pain", "ache", "sore", "hurt", "fever", "cough", "cold", "flu",
		"headache", "nausea", "vomit", "dizzy", "tired", "fatigue", "sick",
		"throat", "nose", "eye", "ear", "stomach", "back", "chest", "head",
		"skin", "rash", "itch", "swelling", "breath", "breathing", "sneeze",
		"runny", "congestion", "diarrhea", "constipation", "blood", "pressure",
		"heart", "attack", "stroke", "diabetes", "asthma", "allergic",
	}
)

// Validate runs the input checks in order and stops at the first failure.
func Validate(text string) ValidationResult {
	if utf8.RuneCountInString(text) < 3 {
		return ValidationResult{Reason: ReasonTooShort}
	}

	lower := strings.ToLower(text)

	if randomToken.MatchString(whitespace.ReplaceAllString(lower, "")) {
		return ValidationResult{Reason: ReasonRandomToken}
	}

	if containsAny(lower, conversationalPhrases) {
		return ValidationResult{Reason: ReasonConversational}
	}

	if len(strings.Fields(text)) < 2 && utf8.RuneCountInString(text) < 10 {
		return ValidationResult{Reason: ReasonTooFewWords}
	}

	if !containsAny(lower, medicalTerms) {
		return ValidationResult{Reason: ReasonNoMedicalTerms}
	}

	return ValidationResult{Valid: true}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
