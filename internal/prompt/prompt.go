package prompt

import (
	"strings"

	"github.com/sahoo-ansu/I-MED/internal/models"
)

const (
	notSpecified = "Not specified"
	none         = "None"
)

const (
	emergencyPrefix = "EMERGENCY CONDITION DETECTED: The symptoms described may indicate a serious medical emergency.\n\n"
	emergencySuffix = "\n\nIMPORTANT: Since this appears to be a potential medical emergency, emphasize that the patient should seek IMMEDIATE medical attention."
)

// Compose substitutes every placeholder in template with the patient input
// and wraps the result with the emergency banner when emergency is set.
func Compose(template string, in models.SymptomInput, emergency bool) string {
	severity := string(in.Severity)
	if severity == "" {
		severity = string(models.SeverityNormal)
	}

	r := strings.NewReplacer(
		"{{symptoms}}", in.Symptoms,
		"{{age}}", orDefault(in.Age, notSpecified),
		"{{gender}}", orDefault(in.Gender, notSpecified),
		"{{preExistingConditions}}", orDefault(in.PreExistingConditions, none),
		"{{severity}}", severity,
	)
	out := r.Replace(template)

	if emergency {
		out = emergencyPrefix + out + emergencySuffix
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
