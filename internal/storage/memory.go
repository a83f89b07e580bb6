package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"survivorrl/internal/model"
)

type MemoryStore struct {
	mu              sync.RWMutex
	initialized     bool
	models          map[string][]model.ModelMetadata
	evaluations     map[string][]model.EvaluationResult
	comparisons     map[string]model.ModelComparison
	comparisonOrder []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.models = make(map[string][]model.ModelMetadata)
	s.evaluations = make(map[string][]model.EvaluationResult)
	s.comparisons = make(map[string]model.ModelComparison)
	s.comparisonOrder = nil
	return nil
}

func (s *MemoryStore) SaveModel(_ context.Context, meta model.ModelMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkInit(); err != nil {
		return err
	}
	versions := s.models[meta.Name]
	idx := sort.Search(len(versions), func(i int) bool { return versions[i].Version >= meta.Version })
	if idx < len(versions) && versions[idx].Version == meta.Version {
		return fmt.Errorf("%w: %s v%d", ErrDuplicateVersion, meta.Name, meta.Version)
	}
	versions = append(versions, model.ModelMetadata{})
	copy(versions[idx+1:], versions[idx:])
	versions[idx] = meta.Clone()
	s.models[meta.Name] = versions
	return nil
}

func (s *MemoryStore) GetModel(_ context.Context, name string, version int) (model.ModelMetadata, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkInit(); err != nil {
		return model.ModelMetadata{}, false, err
	}
	for _, meta := range s.models[name] {
		if meta.Version == version {
			return meta.Clone(), true, nil
		}
	}
	return model.ModelMetadata{}, false, nil
}

func (s *MemoryStore) ListModelVersions(_ context.Context, name string) ([]model.ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkInit(); err != nil {
		return nil, err
	}
	versions := s.models[name]
	copied := make([]model.ModelMetadata, 0, len(versions))
	for _, meta := range versions {
		copied = append(copied, meta.Clone())
	}
	return copied, nil
}

func (s *MemoryStore) ListModelNames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkInit(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) SaveEvaluation(_ context.Context, result model.EvaluationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkInit(); err != nil {
		return err
	}
	s.evaluations[result.ModelName] = append(s.evaluations[result.ModelName], result.Clone())
	return nil
}

func (s *MemoryStore) ListEvaluations(_ context.Context, modelName string) ([]model.EvaluationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkInit(); err != nil {
		return nil, err
	}
	results := s.evaluations[modelName]
	copied := make([]model.EvaluationResult, 0, len(results))
	for _, result := range results {
		copied = append(copied, result.Clone())
	}
	return copied, nil
}

func (s *MemoryStore) SaveComparison(_ context.Context, comparison model.ModelComparison) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkInit(); err != nil {
		return "", err
	}
	comparison = withComparisonID(comparison)
	if _, exists := s.comparisons[comparison.ID]; !exists {
		s.comparisonOrder = append(s.comparisonOrder, comparison.ID)
	}
	s.comparisons[comparison.ID] = comparison.Clone()
	return comparison.ID, nil
}

func (s *MemoryStore) GetComparison(_ context.Context, id string) (model.ModelComparison, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkInit(); err != nil {
		return model.ModelComparison{}, false, err
	}
	comparison, ok := s.comparisons[id]
	if !ok {
		return model.ModelComparison{}, false, nil
	}
	return comparison.Clone(), true, nil
}

func (s *MemoryStore) ListComparisonIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkInit(); err != nil {
		return nil, err
	}
	return append([]string{}, s.comparisonOrder...), nil
}

func (s *MemoryStore) checkInit() error {
	if !s.initialized {
		return fmt.Errorf("store is not initialized")
	}
	return nil
}
