package models

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityNormal Severity = "normal"
	SeveritySevere Severity = "severe"
)

// ParseSeverity maps caller input onto the severity enum. Anything other than
// "severe" is treated as normal.
func ParseSeverity(s string) Severity {
	if Severity(strings.ToLower(strings.TrimSpace(s))) == SeveritySevere {
		return SeveritySevere
	}
	return SeverityNormal
}

// ConditionSeverity grades a reference condition.
type ConditionSeverity string

const (
	ConditionMild     ConditionSeverity = "mild"
	ConditionModerate ConditionSeverity = "moderate"
	ConditionSevere   ConditionSeverity = "severe"
)

type AgeGroup string

const (
	AgeGroupChild AgeGroup = "child"
	AgeGroupAdult AgeGroup = "adult"
	AgeGroupOld   AgeGroup = "old"
)

// UnknownCondition is reported when no condition in the taxonomy scores.
const UnknownCondition = "UNKNOWN"

// SymptomInput is the request-scoped description of what the patient reports.
type SymptomInput struct {
	Symptoms              string   `json:"symptoms"`
	Age                   string   `json:"age,omitempty"`
	Gender                string   `json:"gender,omitempty"`
	PreExistingConditions string   `json:"preExistingConditions,omitempty"`
	Severity              Severity `json:"severity"`
}

// Condition is an entry of the fixed medical taxonomy.
type Condition struct {
	ID                  int64             `json:"id"`
	Name                string            `json:"name"`
	Description         string            `json:"description,omitempty"`
	SymptomKeywords     []string          `json:"symptomKeywords"`
	Severity            ConditionSeverity `json:"severity"`
	RequiresDoctorVisit bool              `json:"requiresDoctorVisit"`
	IsEmergency         bool              `json:"isEmergency"`
	Advice              string            `json:"advice,omitempty"`
	DoctorVisitGuidance string            `json:"doctorVisitGuidance,omitempty"`
}

type Medicine struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	GenericName          string     `json:"genericName,omitempty"`
	RequiresPrescription bool       `json:"requiresPrescription"`
	Description          string     `json:"description"`
	Category             string     `json:"category,omitempty"`
	Dosage               string     `json:"dosage,omitempty"`
	AllowedAgeGroups     []AgeGroup `json:"allowedAgeGroups,omitempty"`
}

// AllowsAgeGroup reports whether the medicine may be suggested to the group.
// Medicines without groups are unrestricted.
func (m *Medicine) AllowsAgeGroup(group AgeGroup) bool {
	if len(m.AllowedAgeGroups) == 0 {
		return true
	}
	for _, g := range m.AllowedAgeGroups {
		if g == group {
			return true
		}
	}
	return false
}

// ClassificationResult is the outcome of scoring free text against the taxonomy.
type ClassificationResult struct {
	Condition    string   `json:"condition"`
	Score        int      `json:"score"`
	MatchedTerms []string `json:"matchedTerms,omitempty"`
}

// ConditionMatch ranks a stored condition against a symptom array.
type ConditionMatch struct {
	Condition  *Condition `json:"condition"`
	MatchScore float64    `json:"matchScore"`
}

// Recommendation is the persisted history record of a served recommendation.
type Recommendation struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	ConditionID      *int64    `json:"conditionId,omitempty"`
	ConditionName    string    `json:"conditionName,omitempty"`
	SymptomsText     string    `json:"symptoms"`
	Age              string    `json:"age,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	Severity         Severity  `json:"severity"`
	IsEmergency      bool      `json:"isEmergency"`
	MedicineIDs      []int64   `json:"medicineIds"`
	AdditionalAdvice string    `json:"additionalAdvice,omitempty"`
	Strategy         string    `json:"strategy"`
	CreatedAt        time.Time `json:"createdAt"`
}
