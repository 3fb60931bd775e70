package memory

import (
	"context"
	"sort"
	"sync"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// DeployerAssessmentStore is an in-memory implementation of
// storage.DeployerAssessmentStore. Versions append; the last appended
// version per deployer is the current reputation.
type DeployerAssessmentStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.DeployerAssessment // keyed by deployer address
}

// NewDeployerAssessmentStore creates a new in-memory deployer assessment store.
func NewDeployerAssessmentStore() *DeployerAssessmentStore {
	return &DeployerAssessmentStore{
		data: make(map[string][]*domain.DeployerAssessment),
	}
}

// Insert appends a new assessment version for a deployer.
func (s *DeployerAssessmentStore) Insert(_ context.Context, a *domain.DeployerAssessment) error {
	if a == nil || a.Deployer == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assessmentCopy := *a
	s.data[a.Deployer] = append(s.data[a.Deployer], &assessmentCopy)
	return nil
}

// GetLatest retrieves the most recent assessment for a deployer.
func (s *DeployerAssessmentStore) GetLatest(_ context.Context, deployer string) (*domain.DeployerAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.data[deployer]
	if len(versions) == 0 {
		return nil, storage.ErrNotFound
	}

	assessmentCopy := *versions[len(versions)-1]
	return &assessmentCopy, nil
}

// ListLatest retrieves the most recent assessment of every deployer.
func (s *DeployerAssessmentStore) ListLatest(_ context.Context) ([]*domain.DeployerAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.DeployerAssessment, 0, len(s.data))
	for _, versions := range s.data {
		assessmentCopy := *versions[len(versions)-1]
		result = append(result, &assessmentCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Deployer < result[j].Deployer
	})
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.DeployerAssessmentStore = (*DeployerAssessmentStore)(nil)
