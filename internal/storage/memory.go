package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sahoo-ansu/I-MED/internal/catalog"
	"github.com/sahoo-ansu/I-MED/internal/models"
)

type MemoryStorage struct {
	mu              sync.RWMutex
	conditions      []*models.Condition
	medicines       map[int64]*models.Medicine
	links           map[int64][]int64
	recommendations map[string][]*models.Recommendation
	nextID          int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		medicines:       make(map[int64]*models.Medicine),
		links:           make(map[int64][]int64),
		recommendations: make(map[string][]*models.Recommendation),
	}
}

// NewSeededMemoryStorage returns a memory store holding the bundled catalog.
func NewSeededMemoryStorage() *MemoryStorage {
	s := NewMemoryStorage()
	s.SeedCatalog(context.Background(), catalog.Entries())
	return s
}

// SeedCatalog loads entries, skipping conditions that already exist.
func (s *MemoryStorage) SeedCatalog(ctx context.Context, entries []catalog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if s.findCondition(e.Condition.Name) != nil {
			continue
		}

		s.nextID++
		cond := e.Condition
		cond.ID = s.nextID
		s.conditions = append(s.conditions, &cond)

		for _, m := range e.Medicines {
			s.nextID++
			med := m
			med.ID = s.nextID
			s.medicines[med.ID] = &med
			s.links[cond.ID] = append(s.links[cond.ID], med.ID)
		}
	}
	return nil
}

func (s *MemoryStorage) findCondition(name string) *models.Condition {
	for _, c := range s.conditions {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func (s *MemoryStorage) ListConditions(ctx context.Context) ([]*models.Condition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Condition, 0, len(s.conditions))
	for _, c := range s.conditions {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStorage) GetConditionByName(ctx context.Context, name string) (*models.Condition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c := s.findCondition(name); c != nil {
		cp := *c
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) ListMedicines(ctx context.Context) ([]*models.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Medicine, 0, len(s.medicines))
	for _, m := range s.medicines {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStorage) GetMedicine(ctx context.Context, id int64) (*models.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, exists := s.medicines[id]; exists {
		cp := *m
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) MedicinesForCondition(ctx context.Context, conditionID int64) ([]*models.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.links[conditionID]
	out := make([]*models.Medicine, 0, len(ids))
	for _, id := range ids {
		if m, exists := s.medicines[id]; exists {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStorage) SaveRecommendation(ctx context.Context, rec *models.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	cp.MedicineIDs = append([]int64(nil), rec.MedicineIDs...)
	s.recommendations[rec.UserID] = append(s.recommendations[rec.UserID], &cp)
	return nil
}

// ListRecommendationsByUser returns the newest records first. A limit of
// zero or less returns everything.
func (s *MemoryStorage) ListRecommendationsByUser(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.recommendations[userID]
	out := make([]*models.Recommendation, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		cp := *recs[i]
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
