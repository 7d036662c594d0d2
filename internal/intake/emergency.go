package intake

import "strings"

// emergencyKeywords flag presentations that need immediate care. A single hit
// is enough; misspellings are not matched.
var emergencyKeywords = []string{
	"heart attack",
	"chest pain",
	"stroke",
	"can't breathe",
	"cannot breathe",
	"severe allergic reaction",
	"anaphylaxis",
	"unconscious",
	"unresponsive",
	"seizure",
	"overdose",
	"suicide",
	"bleeding heavily",
	"severe bleeding",
	"gunshot",
	"stab",
	"cancer",
	"tumor",
	"brain tumor",
	"meningitis",
	"pulmonary embolism",
	"appendicitis",
	"sepsis",
	"blood poisoning",
	"blood clot",
}

func IsEmergency(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range emergencyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// EmergencyTerms returns every emergency keyword found in text.
func EmergencyTerms(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range emergencyKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}
