package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap/zaptest"

	"github.com/sahoo-ansu/I-MED/internal/catalog"
	"github.com/sahoo-ansu/I-MED/internal/models"
)

var (
	conditionCols = []string{"id", "name", "description", "symptom_keywords", "severity",
		"requires_doctor_visit", "is_emergency", "advice", "doctor_visit_guidance"}
	medicineCols = []string{"id", "name", "generic_name", "description", "requires_prescription",
		"category", "dosage", "allowed_age_groups"}
	recommendationCols = []string{"id", "user_id", "condition_id", "condition_name", "symptoms", "age",
		"gender", "severity", "is_emergency", "medicine_ids", "additional_advice", "strategy", "created_at"}
)

func newMockStorage(t *testing.T) (*PostgresStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresStorageWithDB(db, zaptest.NewLogger(t)), mock
}

func TestPostgresListConditions(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery("FROM conditions ORDER BY id").
		WillReturnRows(sqlmock.NewRows(conditionCols).
			AddRow(1, "COLD", "common cold", []byte("{\"runny nose\",\"sore throat\"}"), "mild", false, false, "rest", "if it persists").
			AddRow(2, "HEART_ATTACK", "", []byte("{\"chest pain\"}"), "severe", true, true, "call", "EMERGENCY"))

	conditions, err := s.ListConditions(context.Background())
	if err != nil {
		t.Fatalf("list conditions: %v", err)
	}
	if len(conditions) != 2 {
		t.Fatalf("expected 2 conditions, got %d", len(conditions))
	}
	if got := conditions[0].SymptomKeywords; len(got) != 2 || got[0] != "runny nose" {
		t.Fatalf("unexpected keywords %v", got)
	}
	if !conditions[1].IsEmergency || conditions[1].Severity != models.ConditionSevere {
		t.Fatalf("unexpected emergency condition %+v", conditions[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresGetConditionByNameNotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery("FROM conditions WHERE").
		WithArgs("MISSING").
		WillReturnRows(sqlmock.NewRows(conditionCols))

	if _, err := s.GetConditionByName(context.Background(), "MISSING"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresMedicinesForCondition(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery("JOIN medicine_conditions").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(medicineCols).
			AddRow(10, "Acetaminophen (Tylenol)", "Acetaminophen", "Reduces fever", false, "", "", []byte("{child,adult,old}")).
			AddRow(11, "Pseudoephedrine (Sudafed)", "Pseudoephedrine", "Decongestant", false, "", "", []byte("{adult,old}")))

	meds, err := s.MedicinesForCondition(context.Background(), 1)
	if err != nil {
		t.Fatalf("medicines: %v", err)
	}
	if len(meds) != 2 {
		t.Fatalf("expected 2 medicines, got %d", len(meds))
	}
	if meds[1].AllowsAgeGroup(models.AgeGroupChild) {
		t.Fatalf("Sudafed must not be allowed for children")
	}
	if !meds[0].AllowsAgeGroup(models.AgeGroupChild) {
		t.Fatalf("Tylenol should be allowed for children")
	}
}

func TestPostgresGetMedicineQueryError(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery("FROM medicines m WHERE m.id").
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))

	_, err := s.GetMedicine(context.Background(), 7)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}

func TestPostgresSaveRecommendation(t *testing.T) {
	s, mock := newMockStorage(t)
	conditionID := int64(3)
	rec := &models.Recommendation{
		ID:            "2b1c8a8e-7a4e-4f55-9a7e-0f5b8c4b6a11",
		UserID:        "user-1",
		ConditionID:   &conditionID,
		ConditionName: "FLU",
		SymptomsText:  "fever and body aches",
		Severity:      models.SeverityNormal,
		MedicineIDs:   []int64{5, 6},
		Strategy:      "knowledge_base",
		CreatedAt:     time.Now(),
	}

	mock.ExpectExec("INSERT INTO recommendations").
		WithArgs(rec.ID, "user-1", int64(3), "FLU", "fever and body aches", "", "", "normal", false,
			sqlmock.AnyArg(), "", "knowledge_base", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.SaveRecommendation(context.Background(), rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresListRecommendationsByUser(t *testing.T) {
	s, mock := newMockStorage(t)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM recommendations").
		WithArgs("user-1", 5).
		WillReturnRows(sqlmock.NewRows(recommendationCols).
			AddRow("id-1", "user-1", nil, "", "sore throat", "30", "female", "severe", true,
				[]byte("{3,4}"), "", "generative", created))

	recs, err := s.ListRecommendationsByUser(context.Background(), "user-1", 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	got := recs[0]
	if got.ConditionID != nil {
		t.Fatalf("expected nil condition id, got %v", *got.ConditionID)
	}
	if got.Severity != models.SeveritySevere || !got.IsEmergency {
		t.Fatalf("unexpected record %+v", got)
	}
	if len(got.MedicineIDs) != 2 || got.MedicineIDs[1] != 4 {
		t.Fatalf("unexpected medicine ids %v", got.MedicineIDs)
	}
}

func TestPostgresSeedCatalog(t *testing.T) {
	s, mock := newMockStorage(t)
	entries := []catalog.Entry{{
		Condition: models.Condition{Name: "COLD", SymptomKeywords: []string{"runny nose"}, Severity: models.ConditionMild},
		Medicines: []models.Medicine{{Name: "Honey", Description: "Soothes the throat"}},
	}}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO conditions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO medicines").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectExec("INSERT INTO medicine_conditions").
		WithArgs(int64(10), int64(1), 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.SeedCatalog(context.Background(), entries); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresSeedCatalogRollsBackOnError(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO conditions").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := s.SeedCatalog(context.Background(), catalog.Entries()[:1])
	if err == nil {
		t.Fatalf("expected seed error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
