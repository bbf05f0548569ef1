package storage

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// MemoryStore keeps records in process memory. Records are stored encoded
// so callers never share slices with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	templates   map[string][]byte
	byRun       map[string][]string
	runs        map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.templates = make(map[string][]byte)
	s.byRun = make(map[string][]string)
	s.runs = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) SaveTemplate(_ context.Context, rec TemplateRecord) error {
	payload, err := EncodeTemplate(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errors.New("store is not initialized")
	}

	if _, exists := s.templates[rec.ID]; !exists {
		s.byRun[rec.RunID] = append(s.byRun[rec.RunID], rec.ID)
	}
	s.templates[rec.ID] = payload
	return nil
}

func (s *MemoryStore) GetTemplate(_ context.Context, id string) (TemplateRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.templates[id]
	if !ok {
		return TemplateRecord{}, false, nil
	}
	rec, err := DecodeTemplate(payload)
	if err != nil {
		return TemplateRecord{}, false, err
	}
	return rec, true, nil
}

func (s *MemoryStore) ListTemplates(_ context.Context, runID string) ([]TemplateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TemplateRecord, 0, len(s.byRun[runID]))
	for _, id := range s.byRun[runID] {
		rec, err := DecodeTemplate(s.templates[id])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b TemplateRecord) int { return a.Generation - b.Generation })
	return out, nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run RunRecord) error {
	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errors.New("store is not initialized")
	}

	s.runs[run.ID] = payload
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.runs[id]
	if !ok {
		return RunRecord{}, false, nil
	}
	run, err := DecodeRun(payload)
	if err != nil {
		return RunRecord{}, false, err
	}
	return run, true, nil
}
