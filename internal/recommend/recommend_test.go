package recommend

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/sahoo-ansu/I-MED/internal/classifier"
	"github.com/sahoo-ansu/I-MED/internal/completion"
	"github.com/sahoo-ansu/I-MED/internal/models"
	"github.com/sahoo-ansu/I-MED/internal/storage"
)

type fakeRecorder struct {
	records []*models.Recommendation
}

func (f *fakeRecorder) Record(rec *models.Recommendation) {
	f.records = append(f.records, rec)
}

type fakeNotifier struct {
	calls int
	terms []string
}

func (f *fakeNotifier) NotifyEmergency(userID, symptoms string, terms []string) {
	f.calls++
	f.terms = terms
}

type fakeCompleter struct {
	text     string
	err      error
	calls    int
	prompt   string
	settings completion.Settings
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, s completion.Settings) (string, error) {
	f.calls++
	f.prompt = prompt
	f.settings = s
	return f.text, f.err
}

type unknownClassifier struct{}

func (unknownClassifier) Classify(string) models.ClassificationResult {
	return models.ClassificationResult{Condition: models.UnknownCondition}
}

func (unknownClassifier) ClassifyFromArray([]string, []*models.Condition) []models.ConditionMatch {
	return nil
}

// emptyShelf knows every condition but stocks no medicines.
type emptyShelf struct {
	*storage.MemoryStorage
}

func (emptyShelf) MedicinesForCondition(context.Context, int64) ([]*models.Medicine, error) {
	return nil, nil
}

func newStatic(t *testing.T, source KnowledgeSource) (*StaticService, *fakeRecorder, *fakeNotifier) {
	t.Helper()
	rec := &fakeRecorder{}
	notifier := &fakeNotifier{}
	svc := NewStaticService(
		classifier.NewDefaultEngine(),
		storage.NewSeededMemoryStorage(),
		source,
		rec,
		notifier,
		zaptest.NewLogger(t),
	)
	return svc, rec, notifier
}

func TestStaticRecommendBundled(t *testing.T) {
	svc, rec, _ := newStatic(t, SourceBundled)

	res, err := svc.Recommend(context.Background(), Request{
		Prompt: "runny nose, sore throat, sneezing",
		Age:    "30",
		UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if !res.Matched || res.Condition.Name != "COLD" {
		t.Fatalf("expected COLD, got %+v", res)
	}
	for _, want := range []string{
		"**CONDITION IDENTIFIED: COLD**",
		"- Acetaminophen (Tylenol) - Reduces fever and relieves pain",
		"- Pseudoephedrine (Sudafed) - Relieves nasal congestion",
		selfCareVisit,
		"Only if symptoms persist beyond 7-10 days",
		"**ADDITIONAL ADVICE:**\nRest, stay hydrated",
		reminderFooter,
	} {
		if !strings.Contains(res.Response, want) {
			t.Fatalf("response missing %q:\n%s", want, res.Response)
		}
	}
	if strings.Contains(res.Response, emergencyBanner) {
		t.Fatalf("unexpected emergency banner")
	}
	if res.RequiresDoctorVisit {
		t.Fatalf("COLD should not require a doctor visit")
	}

	if len(rec.records) != 1 {
		t.Fatalf("expected one history record, got %d", len(rec.records))
	}
	got := rec.records[0]
	if got.UserID != "user-1" || got.ConditionName != "COLD" || got.ConditionID == nil {
		t.Fatalf("unexpected record %+v", got)
	}
	if len(got.MedicineIDs) != 4 || got.Strategy != string(StrategyKnowledgeBase) {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestStaticRecommendFiltersByAge(t *testing.T) {
	svc, _, _ := newStatic(t, SourceBundled)

	res, err := svc.Recommend(context.Background(), Request{
		Prompt: "Symptoms: runny nose, sore throat",
		Age:    "8 years",
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(res.Medicines) != 1 || res.Medicines[0].Name != "Acetaminophen (Tylenol)" {
		t.Fatalf("expected only the child-safe medicine, got %+v", res.Medicines)
	}
	if strings.Contains(res.Response, "Dextromethorphan") {
		t.Fatalf("adult medicine leaked into child response")
	}
}

func TestStaticRecommendIgnoresAgeInPromptText(t *testing.T) {
	svc, _, _ := newStatic(t, SourceBundled)

	res, err := svc.Recommend(context.Background(), Request{
		Prompt: "Symptoms: runny nose, sore throat\nAge: 8 years\nGender: male",
		UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(res.Medicines) != 4 {
		t.Fatalf("age in the prompt text must not filter medicines, got %d", len(res.Medicines))
	}
}

func TestStaticRecommendNoMedicines(t *testing.T) {
	svc := NewStaticService(
		classifier.NewDefaultEngine(),
		emptyShelf{storage.NewSeededMemoryStorage()},
		SourceBundled,
		nil,
		nil,
		zaptest.NewLogger(t),
	)

	res, err := svc.Recommend(context.Background(), Request{Prompt: "runny nose, sore throat, sneezing"})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if !strings.Contains(res.Response, "**RECOMMENDED MEDICINES:**\n"+noMedicineLine) {
		t.Fatalf("expected fallback line, got:\n%s", res.Response)
	}
}

func TestStaticRecommendNoMatch(t *testing.T) {
	notifier := &fakeNotifier{}
	rec := &fakeRecorder{}
	svc := NewStaticService(unknownClassifier{}, storage.NewSeededMemoryStorage(), SourceBundled, rec, notifier, zaptest.NewLogger(t))

	res, err := svc.Recommend(context.Background(), Request{
		Prompt: "sudden chest pain spreading to my left arm",
		UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if res.Matched || res.Response != noMatchMessage {
		t.Fatalf("expected soft no-match, got %+v", res)
	}
	if !res.IsEmergency {
		t.Fatalf("chest pain should be flagged as emergency")
	}
	if notifier.calls != 1 || notifier.terms[0] != "chest pain" {
		t.Fatalf("expected one emergency alert, got %d %v", notifier.calls, notifier.terms)
	}
	if len(rec.records) != 0 {
		t.Fatalf("no-match should not be recorded")
	}
}

func TestStaticRecommendSevereIsUrgent(t *testing.T) {
	svc, _, _ := newStatic(t, SourceBundled)

	res, err := svc.Recommend(context.Background(), Request{
		Prompt: "Symptoms: runny nose, sore throat\nSeverity: severe",
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if !strings.Contains(res.Response, "**DOCTOR VISIT RECOMMENDATION:**\n"+urgentVisit) {
		t.Fatalf("expected urgent visit line:\n%s", res.Response)
	}
}

func TestStaticRecommendDoctorVisitConditionIsUrgent(t *testing.T) {
	svc, _, _ := newStatic(t, SourceBundled)

	res, err := svc.Recommend(context.Background(), Request{Prompt: "fever and body aches for two days"})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if res.Condition.Name != "FLU" || !res.RequiresDoctorVisit {
		t.Fatalf("expected FLU requiring a visit, got %+v", res.Condition)
	}
	if !strings.Contains(res.Response, "**DOCTOR VISIT RECOMMENDATION:**\n"+urgentVisit) {
		t.Fatalf("expected urgent visit line:\n%s", res.Response)
	}
}

func TestStaticRecommendStoreSource(t *testing.T) {
	svc, _, _ := newStatic(t, SourceStore)

	res, err := svc.Recommend(context.Background(), Request{Prompt: "runny nose, sore throat"})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if !res.Matched || res.Condition.Name != "COLD" {
		t.Fatalf("expected COLD, got %+v", res.Condition)
	}
	if len(res.Matches) == 0 || res.Matches[0].MatchScore != 1 {
		t.Fatalf("expected full match score, got %+v", res.Matches)
	}
}

func TestStaticRecommendInvalidInput(t *testing.T) {
	svc, _, _ := newStatic(t, SourceBundled)

	for _, prompt := range []string{"", "   ", "ab12", "hello how are you"} {
		_, err := svc.Recommend(context.Background(), Request{Prompt: prompt})
		var invalid *InvalidInputError
		if !errors.As(err, &invalid) {
			t.Fatalf("prompt %q: expected InvalidInputError, got %v", prompt, err)
		}
		if StatusCode(err) != http.StatusBadRequest || PublicMessage(err) != MessageInvalidInput {
			t.Fatalf("prompt %q: unexpected mapping %d %q", prompt, StatusCode(err), PublicMessage(err))
		}
	}
}

func newGenerative(t *testing.T, c *fakeCompleter, key string) (*GenerativeService, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	svc := NewGenerativeService(
		c,
		classifier.NewDefaultEngine(),
		completion.Settings{APIKey: key, Model: "mistralai/mistral-7b-instruct:free", Temperature: 0.7, TopP: 0.95, MaxTokens: 500},
		"",
		rec,
		nil,
		zaptest.NewLogger(t),
	)
	return svc, rec
}

func TestGenerativeRecommend(t *testing.T) {
	c := &fakeCompleter{text: "Possible Condition: Common cold"}
	svc, rec := newGenerative(t, c, "sk-config")

	res, err := svc.Recommend(context.Background(), Request{
		Prompt: "runny nose, sore throat, sneezing",
		Age:    "30",
		Gender: "female",
		UserID: "user-2",
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}

	want := disclaimerHeader + "\n\nPossible Condition: Common cold\n\n" + reminderFooter
	if res.Text != want {
		t.Fatalf("unexpected text:\n%s", res.Text)
	}
	if res.DetectedCondition.Condition != "COLD" {
		t.Fatalf("expected detected COLD, got %+v", res.DetectedCondition)
	}
	if strings.Contains(c.prompt, "{{") {
		t.Fatalf("prompt has unresolved placeholders:\n%s", c.prompt)
	}
	if !strings.Contains(c.prompt, "- Age: 30") || !strings.Contains(c.prompt, "- Gender: female") {
		t.Fatalf("prompt missing patient fields:\n%s", c.prompt)
	}
	if c.settings.APIKey != "sk-config" || c.settings.MaxTokens != 500 {
		t.Fatalf("unexpected settings %+v", c.settings)
	}
	if len(rec.records) != 1 || rec.records[0].ConditionName != "COLD" || rec.records[0].Strategy != string(StrategyGenerative) {
		t.Fatalf("unexpected history %+v", rec.records)
	}
}

func TestGenerativeRequestOverrides(t *testing.T) {
	c := &fakeCompleter{text: "ok"}
	svc, _ := newGenerative(t, c, "sk-config")

	temp := 0.2
	tokens := 64
	_, err := svc.Recommend(context.Background(), Request{
		Prompt: "runny nose, sore throat, sneezing",
		AISettings: &AISettings{
			APIKey:         "sk-request",
			Model:          "openai/gpt-4o-mini",
			Temperature:    &temp,
			MaxTokens:      &tokens,
			PromptTemplate: "Patient reports {{symptoms}} ({{severity}})",
		},
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if c.settings.APIKey != "sk-request" || c.settings.Model != "openai/gpt-4o-mini" {
		t.Fatalf("overrides ignored: %+v", c.settings)
	}
	if c.settings.Temperature != 0.2 || c.settings.MaxTokens != 64 || c.settings.TopP != 0.95 {
		t.Fatalf("unexpected numeric settings %+v", c.settings)
	}
	if c.prompt != "Patient reports runny nose, sore throat, sneezing (normal)" {
		t.Fatalf("template override ignored: %q", c.prompt)
	}
}

func TestGenerativeEmergency(t *testing.T) {
	c := &fakeCompleter{text: "Go to the hospital."}
	svc, _ := newGenerative(t, c, "sk-config")

	res, err := svc.Recommend(context.Background(), Request{Prompt: "I think I'm having a heart attack, chest pain"})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if !res.IsEmergency || !strings.Contains(res.Text, emergencyBanner) {
		t.Fatalf("expected emergency banner:\n%s", res.Text)
	}
	if !strings.HasPrefix(c.prompt, "EMERGENCY CONDITION DETECTED") {
		t.Fatalf("prompt not wrapped:\n%s", c.prompt)
	}
}

func TestGenerativeEmptyCompletion(t *testing.T) {
	svc, _ := newGenerative(t, &fakeCompleter{}, "sk-config")

	res, err := svc.Recommend(context.Background(), Request{Prompt: "runny nose, sore throat, sneezing"})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if res.Text != disclaimerHeader+"\n\n"+reminderFooter {
		t.Fatalf("unexpected text %q", res.Text)
	}
}

func TestGenerativeMissingKey(t *testing.T) {
	for _, key := range []string{"", PlaceholderAPIKey} {
		c := &fakeCompleter{}
		svc, _ := newGenerative(t, c, key)

		_, err := svc.Recommend(context.Background(), Request{Prompt: "runny nose, sore throat, sneezing"})
		if StatusCode(err) != http.StatusUnauthorized || PublicMessage(err) != MessageNoAPIKey {
			t.Fatalf("key %q: expected 401, got %v", key, err)
		}
		if c.calls != 0 {
			t.Fatalf("key %q: completion should not be called", key)
		}
	}
}

func TestGenerativeErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"rate limited", &completion.StatusError{StatusCode: 429, Message: "slow down"}, 429, "AI service error (429)"},
		{"bad gateway", &completion.StatusError{StatusCode: 503, Message: "down"}, 503, "AI service error (503)"},
		{"malformed", completion.ErrMalformedResponse, http.StatusInternalServerError, MessageParseFailure},
		{"transport", &completion.TransportError{Err: errors.New("dial tcp: refused")}, http.StatusBadGateway, MessageTransport},
		{"missing key", completion.ErrMissingAPIKey, http.StatusUnauthorized, MessageNoAPIKey},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, rec := newGenerative(t, &fakeCompleter{err: tc.err}, "sk-config")

			_, err := svc.Recommend(context.Background(), Request{Prompt: "runny nose, sore throat, sneezing", UserID: "u"})
			if StatusCode(err) != tc.status {
				t.Fatalf("expected status %d, got %d (%v)", tc.status, StatusCode(err), err)
			}
			if PublicMessage(err) != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, PublicMessage(err))
			}
			if strings.Contains(PublicMessage(err), "slow down") {
				t.Fatalf("provider text leaked")
			}
			if len(rec.records) != 0 {
				t.Fatalf("failed calls must not be recorded")
			}
		})
	}
}

func TestAgeGroup(t *testing.T) {
	cases := []struct {
		age   string
		group models.AgeGroup
		ok    bool
	}{
		{"8", models.AgeGroupChild, true},
		{"17 years", models.AgeGroupChild, true},
		{"18", models.AgeGroupAdult, true},
		{"64", models.AgeGroupAdult, true},
		{"65", models.AgeGroupOld, true},
		{"Not specified", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		group, ok := ageGroup(tc.age)
		if group != tc.group || ok != tc.ok {
			t.Fatalf("ageGroup(%q) = %q %v, want %q %v", tc.age, group, ok, tc.group, tc.ok)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	if s, ok := ParseStrategy(" Generative "); !ok || s != StrategyGenerative {
		t.Fatalf("unexpected %q %v", s, ok)
	}
	if s, ok := ParseStrategy("knowledge_base"); !ok || s != StrategyKnowledgeBase {
		t.Fatalf("unexpected %q %v", s, ok)
	}
	if _, ok := ParseStrategy("magic"); ok {
		t.Fatalf("unknown strategy accepted")
	}
}
