package store

import (
	"context"
	"fmt"
	"sync"

	"registrar/internal/record/models"
	"registrar/pkg/platform/sentinel"
)

// InMemory keeps records only for the lifetime of the process.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]*models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]*models.Record)}
}

func (s *InMemory) Put(_ context.Context, rec *models.Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("put record: identifier is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[id]; ok {
		return rec.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRecords(s.records), nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
