package recommend

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sahoo-ansu/I-MED/internal/completion"
	"github.com/sahoo-ansu/I-MED/internal/models"
	"github.com/sahoo-ansu/I-MED/internal/prompt"
)

// PlaceholderAPIKey is the value shipped in sample env files. It never works.
const PlaceholderAPIKey = "your_openrouter_api_key_here"

// GenerativeResult is the completion backed answer.
type GenerativeResult struct {
	Text        string
	IsEmergency bool
	// DetectedCondition is the keyword classifier's guess. It is informational
	// and never influences Text.
	DetectedCondition models.ClassificationResult
}

// TextClassifier is the raw text half of classifier.Classifier.
type TextClassifier interface {
	Classify(text string) models.ClassificationResult
}

type GenerativeService struct {
	completer  Completer
	classifier TextClassifier
	defaults   completion.Settings
	template   string
	recorder   Recorder
	notifier   EmergencyNotifier
	logger     *zap.Logger
}

// NewGenerativeService wires the completion path. defaults.APIKey is the
// configured fallback key; an empty template means prompt.DefaultTemplate.
func NewGenerativeService(
	completer Completer,
	clf TextClassifier,
	defaults completion.Settings,
	template string,
	recorder Recorder,
	notifier EmergencyNotifier,
	logger *zap.Logger,
) *GenerativeService {
	if template == "" {
		template = prompt.DefaultTemplate
	}
	return &GenerativeService{
		completer:  completer,
		classifier: clf,
		defaults:   defaults,
		template:   template,
		recorder:   recorder,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *GenerativeService) Recommend(ctx context.Context, req Request) (*GenerativeResult, error) {
	p, err := prepare(req)
	if err != nil {
		s.logger.Info("Rejected symptom input", zap.Error(err))
		return nil, err
	}

	if p.emergency {
		s.logger.Warn("Emergency symptoms detected",
			zap.String("user_id", req.UserID),
			zap.Strings("terms", p.terms))
		if s.notifier != nil {
			s.notifier.NotifyEmergency(req.UserID, p.input.Symptoms, p.terms)
		}
	}

	detected := s.classifier.Classify(p.input.Symptoms)
	s.logger.Debug("Keyword classification",
		zap.String("condition", detected.Condition),
		zap.Int("score", detected.Score))

	settings, template := s.resolve(req.AISettings)
	if settings.APIKey == "" || settings.APIKey == PlaceholderAPIKey {
		return nil, &AuthenticationError{}
	}

	text, err := s.completer.Complete(ctx, prompt.Compose(template, p.input, p.emergency), settings)
	if err != nil {
		return nil, mapCompletionError(err)
	}

	result := &GenerativeResult{
		Text:              formatGenerative(text, p.emergency),
		IsEmergency:       p.emergency,
		DetectedCondition: detected,
	}

	if req.UserID != "" && s.recorder != nil {
		s.recorder.Record(&models.Recommendation{
			UserID:        req.UserID,
			ConditionName: detected.Condition,
			SymptomsText:  p.input.Symptoms,
			Age:           p.input.Age,
			Gender:        p.input.Gender,
			Severity:      p.input.Severity,
			IsEmergency:   p.emergency,
			MedicineIDs:   []int64{},
			Strategy:      string(StrategyGenerative),
		})
	}

	return result, nil
}

// resolve layers per-request overrides on top of the configured settings.
func (s *GenerativeService) resolve(o *AISettings) (completion.Settings, string) {
	settings := s.defaults
	template := s.template
	if o == nil {
		return settings, template
	}

	if key := strings.TrimSpace(o.APIKey); key != "" {
		settings.APIKey = key
	}
	if o.Model != "" {
		settings.Model = o.Model
	}
	if o.Temperature != nil {
		settings.Temperature = *o.Temperature
	}
	if o.TopP != nil {
		settings.TopP = *o.TopP
	}
	if o.MaxTokens != nil {
		settings.MaxTokens = *o.MaxTokens
	}
	if strings.TrimSpace(o.PromptTemplate) != "" {
		template = o.PromptTemplate
	}
	return settings, template
}

func mapCompletionError(err error) error {
	var statusErr *completion.StatusError
	var transportErr *completion.TransportError
	switch {
	case errors.Is(err, completion.ErrMissingAPIKey):
		return &AuthenticationError{}
	case errors.As(err, &statusErr):
		return &UpstreamServiceError{StatusCode: statusErr.StatusCode, Err: err}
	case errors.Is(err, completion.ErrMalformedResponse):
		return &ResponseParseError{Err: err}
	case errors.As(err, &transportErr):
		return &TransportError{Err: err}
	default:
		return err
	}
}

func formatGenerative(text string, emergency bool) string {
	var b strings.Builder
	b.WriteString(disclaimerHeader + "\n\n")
	if text != "" {
		b.WriteString(text + "\n\n")
	}
	if emergency {
		b.WriteString(emergencyBanner + "\n\n")
	}
	b.WriteString(reminderFooter)
	return b.String()
}
