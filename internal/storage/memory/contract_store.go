package memory

import (
	"context"
	"sort"
	"sync"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// ContractStore is an in-memory implementation of storage.ContractStore.
type ContractStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ContractRecord // keyed by address
}

// NewContractStore creates a new in-memory contract store.
func NewContractStore() *ContractStore {
	return &ContractStore{
		data: make(map[string]*domain.ContractRecord),
	}
}

// Insert adds a new contract record. Returns ErrDuplicateKey if address exists.
func (s *ContractStore) Insert(_ context.Context, c *domain.ContractRecord) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.Address]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	recordCopy := *c
	s.data[c.Address] = &recordCopy
	return nil
}

// GetByAddress retrieves a record by contract address. Returns ErrNotFound if not exists.
func (s *ContractStore) GetByAddress(_ context.Context, address string) (*domain.ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recordCopy := *c
	return &recordCopy, nil
}

// GetByDeployer retrieves all records for a deployer, ordered by deployed_at ASC.
func (s *ContractStore) GetByDeployer(_ context.Context, deployer string) ([]*domain.ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ContractRecord
	for _, c := range s.data {
		if c.Deployer == deployer {
			recordCopy := *c
			result = append(result, &recordCopy)
		}
	}

	sortContracts(result)
	return result, nil
}

// GetByTimeRange retrieves records deployed within [start, end] (inclusive).
func (s *ContractStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ContractRecord
	for _, c := range s.data {
		if c.DeployedAt >= start && c.DeployedAt <= end {
			recordCopy := *c
			result = append(result, &recordCopy)
		}
	}

	sortContracts(result)
	return result, nil
}

// sortContracts orders by deployed_at ASC with address as tiebreaker.
func sortContracts(records []*domain.ContractRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].DeployedAt != records[j].DeployedAt {
			return records[i].DeployedAt < records[j].DeployedAt
		}
		return records[i].Address < records[j].Address
	})
}

// Verify interface compliance at compile time.
var _ storage.ContractStore = (*ContractStore)(nil)
