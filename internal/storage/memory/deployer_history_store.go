package memory

import (
	"context"
	"sort"
	"sync"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// DeployerHistoryStore is an in-memory implementation of
// storage.DeployerHistoryStore. Insertion order per deployer is
// preserved; entries are never mutated after append.
type DeployerHistoryStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.TokenAssessment // keyed by deployer address
}

// NewDeployerHistoryStore creates a new in-memory history store.
func NewDeployerHistoryStore() *DeployerHistoryStore {
	return &DeployerHistoryStore{
		data: make(map[string][]*domain.TokenAssessment),
	}
}

// Append adds an assessment to a deployer's history.
func (s *DeployerHistoryStore) Append(_ context.Context, deployer string, a *domain.TokenAssessment) error {
	if deployer == "" || a == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assessmentCopy := *a
	s.data[deployer] = append(s.data[deployer], &assessmentCopy)
	return nil
}

// ListByDeployer retrieves a deployer's history in insertion order.
// A deployer with no history yields an empty slice, not an error.
func (s *DeployerHistoryStore) ListByDeployer(_ context.Context, deployer string) ([]*domain.TokenAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.data[deployer]
	result := make([]*domain.TokenAssessment, 0, len(entries))
	for _, a := range entries {
		assessmentCopy := *a
		result = append(result, &assessmentCopy)
	}
	return result, nil
}

// Deployers retrieves all deployer addresses with at least one entry.
func (s *DeployerHistoryStore) Deployers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, 0, len(s.data))
	for deployer := range s.data {
		result = append(result, deployer)
	}
	sort.Strings(result)
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.DeployerHistoryStore = (*DeployerHistoryStore)(nil)
