package memory

import (
	"context"
	"sort"
	"sync"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// TokenAssessmentStore is an in-memory implementation of
// storage.TokenAssessmentStore.
type TokenAssessmentStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TokenAssessment // keyed by contract address
}

// NewTokenAssessmentStore creates a new in-memory token assessment store.
func NewTokenAssessmentStore() *TokenAssessmentStore {
	return &TokenAssessmentStore{
		data: make(map[string]*domain.TokenAssessment),
	}
}

// Insert adds a new assessment. Returns ErrDuplicateKey if the contract
// was already assessed.
func (s *TokenAssessmentStore) Insert(_ context.Context, a *domain.TokenAssessment) error {
	if a == nil || a.ContractAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.ContractAddress]; exists {
		return storage.ErrDuplicateKey
	}

	assessmentCopy := *a
	s.data[a.ContractAddress] = &assessmentCopy
	return nil
}

// GetByContract retrieves the assessment for a contract. Returns ErrNotFound if not exists.
func (s *TokenAssessmentStore) GetByContract(_ context.Context, address string) (*domain.TokenAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	assessmentCopy := *a
	return &assessmentCopy, nil
}

// GetByLabel retrieves all assessments with a given label, ordered by assessed_at ASC.
func (s *TokenAssessmentStore) GetByLabel(_ context.Context, label domain.TokenLabel) ([]*domain.TokenAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TokenAssessment
	for _, a := range s.data {
		if a.Label == label {
			assessmentCopy := *a
			result = append(result, &assessmentCopy)
		}
	}

	sortAssessments(result)
	return result, nil
}

// GetAll retrieves all assessments, ordered by assessed_at ASC.
func (s *TokenAssessmentStore) GetAll(_ context.Context) ([]*domain.TokenAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TokenAssessment, 0, len(s.data))
	for _, a := range s.data {
		assessmentCopy := *a
		result = append(result, &assessmentCopy)
	}

	sortAssessments(result)
	return result, nil
}

// sortAssessments orders by assessed_at ASC with address as tiebreaker.
func sortAssessments(assessments []*domain.TokenAssessment) {
	sort.Slice(assessments, func(i, j int) bool {
		if assessments[i].AssessedAt != assessments[j].AssessedAt {
			return assessments[i].AssessedAt < assessments[j].AssessedAt
		}
		return assessments[i].ContractAddress < assessments[j].ContractAddress
	})
}

// Verify interface compliance at compile time.
var _ storage.TokenAssessmentStore = (*TokenAssessmentStore)(nil)
