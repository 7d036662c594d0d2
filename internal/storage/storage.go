package storage

import (
	"context"
	"errors"

	"github.com/sahoo-ansu/I-MED/internal/models"
)

var ErrNotFound = errors.New("not found")

// Storage is the read side of the condition/medicine knowledge base plus
// the recommendation history.
type Storage interface {
	ListConditions(ctx context.Context) ([]*models.Condition, error)
	GetConditionByName(ctx context.Context, name string) (*models.Condition, error)
	ListMedicines(ctx context.Context) ([]*models.Medicine, error)
	GetMedicine(ctx context.Context, id int64) (*models.Medicine, error)
	MedicinesForCondition(ctx context.Context, conditionID int64) ([]*models.Medicine, error)
	Ping(ctx context.Context) error
	Close() error

	// Embed RecommendationStore interface
	RecommendationStore
}

type RecommendationStore interface {
	SaveRecommendation(ctx context.Context, rec *models.Recommendation) error
	ListRecommendationsByUser(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error)
}
