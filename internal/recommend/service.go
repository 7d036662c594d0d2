package recommend

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/sahoo-ansu/I-MED/internal/completion"
	"github.com/sahoo-ansu/I-MED/internal/intake"
	"github.com/sahoo-ansu/I-MED/internal/models"
)

type Strategy string

const (
	StrategyKnowledgeBase Strategy = "knowledge_base"
	StrategyGenerative    Strategy = "generative"
)

// ParseStrategy accepts the configured strategy name.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyKnowledgeBase, "knowledgebase", "static":
		return StrategyKnowledgeBase, true
	case StrategyGenerative, "ai":
		return StrategyGenerative, true
	}
	return "", false
}

// Request is one recommendation call as received from a client.
type Request struct {
	Prompt     string
	Age        string
	Gender     string
	UserID     string
	AISettings *AISettings
}

// AISettings override the configured completion parameters per request.
type AISettings struct {
	APIKey         string   `json:"apiKey,omitempty"`
	Model          string   `json:"model,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	TopP           *float64 `json:"topP,omitempty"`
	MaxTokens      *int     `json:"maxTokens,omitempty"`
	PromptTemplate string   `json:"promptTemplate,omitempty"`
}

// Recorder stores served recommendations without blocking the caller.
type Recorder interface {
	Record(rec *models.Recommendation)
}

// EmergencyNotifier forwards emergency presentations to an on-call channel.
type EmergencyNotifier interface {
	NotifyEmergency(userID, symptoms string, terms []string)
}

// Completer sends a prompt to a text completion provider.
type Completer interface {
	Complete(ctx context.Context, prompt string, s completion.Settings) (string, error)
}

const (
	disclaimerHeader = "**MEDICAL DISCLAIMER: This is AI-generated information and should not replace professional medical advice. Always consult a healthcare provider.**"
	emergencyBanner  = "**⚠️ IMPORTANT: The symptoms you've described may indicate a serious medical condition. Please seek immediate medical attention. ⚠️**"
	reminderFooter   = "**Remember: Always consult with a qualified healthcare professional before taking any medication.**"
)

// prepared is a validated request ready for either strategy.
type prepared struct {
	input     models.SymptomInput
	emergency bool
	terms     []string
}

func prepare(req Request) (prepared, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return prepared{}, &InvalidInputError{Reason: intake.ReasonTooShort}
	}

	fields := intake.Extract(req.Prompt)
	if v := intake.Validate(fields.Symptoms); !v.Valid {
		return prepared{}, &InvalidInputError{Reason: v.Reason}
	}

	in := models.SymptomInput{
		Symptoms:              fields.Symptoms,
		Age:                   strings.TrimSpace(req.Age),
		Gender:                strings.TrimSpace(req.Gender),
		PreExistingConditions: fields.PreExisting,
		Severity:              fields.Severity,
	}

	scan := in.Symptoms + " " + in.PreExistingConditions
	return prepared{
		input:     in,
		emergency: intake.IsEmergency(scan),
		terms:     intake.EmergencyTerms(scan),
	}, nil
}

var leadingNumber = regexp.MustCompile(`\d+`)

// ageGroup buckets a free-form age such as "42" or "42 years".
func ageGroup(age string) (models.AgeGroup, bool) {
	n, err := strconv.Atoi(leadingNumber.FindString(age))
	if err != nil {
		return "", false
	}
	switch {
	case n < 18:
		return models.AgeGroupChild, true
	case n < 65:
		return models.AgeGroupAdult, true
	default:
		return models.AgeGroupOld, true
	}
}
