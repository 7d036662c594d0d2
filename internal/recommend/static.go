package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sahoo-ansu/I-MED/internal/catalog"
	"github.com/sahoo-ansu/I-MED/internal/classifier"
	"github.com/sahoo-ansu/I-MED/internal/intake"
	"github.com/sahoo-ansu/I-MED/internal/models"
	"github.com/sahoo-ansu/I-MED/internal/storage"
)

// KnowledgeSource selects how the static path finds a condition.
type KnowledgeSource string

const (
	// SourceBundled scores raw text with the keyword table and looks the
	// winner up by name.
	SourceBundled KnowledgeSource = "bundled"
	// SourceStore ranks every stored condition against the split symptoms.
	SourceStore KnowledgeSource = "store"
)

const (
	noMatchMessage   = "Could not determine a condition based on the symptoms provided. Please provide more specific symptoms or consult a healthcare professional."
	noMedicineLine   = "No specific medicines found for this condition. Please consult a healthcare professional."
	defaultAdvice    = "Stay hydrated, get rest, and monitor your symptoms."
	urgentVisit      = "URGENT: Seek immediate medical attention based on your symptoms and severity."
	selfCareVisit    = "Self-care is appropriate, but consult a doctor if symptoms persist or worsen."
	prescriptionNote = " (PRESCRIPTION REQUIRED)"
)

// KnowledgeBase is the part of the store the static path reads.
type KnowledgeBase interface {
	ListConditions(ctx context.Context) ([]*models.Condition, error)
	GetConditionByName(ctx context.Context, name string) (*models.Condition, error)
	MedicinesForCondition(ctx context.Context, conditionID int64) ([]*models.Medicine, error)
}

// StaticResult is the knowledge base answer. When Matched is false only
// Response and IsEmergency are meaningful.
type StaticResult struct {
	Matched             bool
	Response            string
	Condition           *models.Condition
	Medicines           []*models.Medicine
	IsEmergency         bool
	RequiresDoctorVisit bool
	Matches             []models.ConditionMatch
}

type StaticService struct {
	classifier classifier.Classifier
	kb         KnowledgeBase
	source     KnowledgeSource
	recorder   Recorder
	notifier   EmergencyNotifier
	logger     *zap.Logger
}

// NewStaticService wires the knowledge base path. recorder and notifier may
// be nil.
func NewStaticService(
	clf classifier.Classifier,
	kb KnowledgeBase,
	source KnowledgeSource,
	recorder Recorder,
	notifier EmergencyNotifier,
	logger *zap.Logger,
) *StaticService {
	if source == "" {
		source = SourceBundled
	}
	return &StaticService{
		classifier: clf,
		kb:         kb,
		source:     source,
		recorder:   recorder,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *StaticService) Recommend(ctx context.Context, req Request) (*StaticResult, error) {
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

	cond, meds, matches, err := s.resolve(ctx, p.input.Symptoms)
	if err != nil {
		s.logger.Error("Failed to resolve condition", zap.Error(err))
		return nil, err
	}
	if cond == nil {
		return &StaticResult{
			Response:    noMatchMessage,
			IsEmergency: p.emergency,
			Matches:     matches,
		}, nil
	}

	if group, ok := ageGroup(p.input.Age); ok {
		meds = filterByAge(meds, group)
	}

	result := &StaticResult{
		Matched:             true,
		Response:            formatStatic(cond, meds, p),
		Condition:           cond,
		Medicines:           meds,
		IsEmergency:         p.emergency,
		RequiresDoctorVisit: cond.RequiresDoctorVisit,
		Matches:             matches,
	}

	s.logger.Info("Condition identified",
		zap.String("condition", cond.Name),
		zap.Int("medicines", len(meds)),
		zap.Bool("emergency", p.emergency))

	if req.UserID != "" && s.recorder != nil {
		s.recorder.Record(staticRecord(req.UserID, p, cond, meds))
	}

	return result, nil
}

// resolve returns a nil condition when nothing matched.
func (s *StaticService) resolve(ctx context.Context, symptoms string) (*models.Condition, []*models.Medicine, []models.ConditionMatch, error) {
	switch s.source {
	case SourceStore:
		conditions, err := s.kb.ListConditions(ctx)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("list conditions: %w", err)
		}
		matches := s.classifier.ClassifyFromArray(intake.SplitSymptoms(symptoms), conditions)
		if len(matches) == 0 {
			return nil, nil, nil, nil
		}
		cond := matches[0].Condition
		meds, err := s.kb.MedicinesForCondition(ctx, cond.ID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("medicines for %s: %w", cond.Name, err)
		}
		return cond, meds, matches, nil

	default:
		res := s.classifier.Classify(symptoms)
		if res.Condition == models.UnknownCondition {
			return nil, nil, nil, nil
		}

		cond, err := s.kb.GetConditionByName(ctx, res.Condition)
		if errors.Is(err, storage.ErrNotFound) {
			entry, ok := catalog.Lookup(res.Condition)
			if !ok {
				return nil, nil, nil, nil
			}
			return &entry.Condition, medicinePointers(entry.Medicines), nil, nil
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("get condition %s: %w", res.Condition, err)
		}

		meds, err := s.kb.MedicinesForCondition(ctx, cond.ID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("medicines for %s: %w", cond.Name, err)
		}
		return cond, meds, nil, nil
	}
}

func formatStatic(cond *models.Condition, meds []*models.Medicine, p prepared) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**CONDITION IDENTIFIED: %s**\n\n", cond.Name)

	b.WriteString("**RECOMMENDED MEDICINES:**\n")
	if len(meds) == 0 {
		b.WriteString(noMedicineLine + "\n")
	}
	for _, m := range meds {
		note := ""
		if m.RequiresPrescription {
			note = prescriptionNote
		}
		fmt.Fprintf(&b, "- %s%s - %s\n", m.Name, note, m.Description)
	}

	b.WriteString("\n**DOCTOR VISIT RECOMMENDATION:**\n")
	b.WriteString(doctorVisit(cond, p) + "\n")

	b.WriteString("\n**ADDITIONAL ADVICE:**\n")
	advice := cond.Advice
	if advice == "" {
		advice = defaultAdvice
	}
	b.WriteString(advice + "\n")

	if p.emergency {
		b.WriteString("\n" + emergencyBanner + "\n")
	}
	b.WriteString("\n" + reminderFooter)

	return b.String()
}

func doctorVisit(cond *models.Condition, p prepared) string {
	var line string
	switch {
	case p.emergency || p.input.Severity == models.SeveritySevere || cond.IsEmergency || cond.RequiresDoctorVisit:
		line = urgentVisit
	default:
		line = selfCareVisit
	}
	if cond.DoctorVisitGuidance != "" {
		line += "\n" + cond.DoctorVisitGuidance
	}
	return line
}

func filterByAge(meds []*models.Medicine, group models.AgeGroup) []*models.Medicine {
	out := make([]*models.Medicine, 0, len(meds))
	for _, m := range meds {
		if m.AllowsAgeGroup(group) {
			out = append(out, m)
		}
	}
	return out
}

func medicinePointers(meds []models.Medicine) []*models.Medicine {
	out := make([]*models.Medicine, len(meds))
	for i := range meds {
		out[i] = &meds[i]
	}
	return out
}

func staticRecord(userID string, p prepared, cond *models.Condition, meds []*models.Medicine) *models.Recommendation {
	rec := &models.Recommendation{
		UserID:           userID,
		ConditionName:    cond.Name,
		SymptomsText:     p.input.Symptoms,
		Age:              p.input.Age,
		Gender:           p.input.Gender,
		Severity:         p.input.Severity,
		IsEmergency:      p.emergency,
		MedicineIDs:      make([]int64, 0, len(meds)),
		AdditionalAdvice: cond.Advice,
		Strategy:         string(StrategyKnowledgeBase),
	}
	if cond.ID != 0 {
		id := cond.ID
		rec.ConditionID = &id
	}
	for _, m := range meds {
		if m.ID != 0 {
			rec.MedicineIDs = append(rec.MedicineIDs, m.ID)
		}
	}
	return rec
}
