package memory

import (
	"context"
	"sort"
	"sync"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// ReportStore is an in-memory implementation of storage.ReportStore.
// It also satisfies storage.ReportArchiveStore so memory-backed runs do
// not need a ClickHouse connection.
type ReportStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Report // keyed by report_id
}

// NewReportStore creates a new in-memory report store.
func NewReportStore() *ReportStore {
	return &ReportStore{
		data: make(map[string]*domain.Report),
	}
}

// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
func (s *ReportStore) Insert(_ context.Context, r *domain.Report) error {
	if r == nil || r.ReportID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ReportID]; exists {
		return storage.ErrDuplicateKey
	}

	reportCopy := *r
	s.data[r.ReportID] = &reportCopy
	return nil
}

// InsertBulk archives multiple reports, skipping duplicates.
func (s *ReportStore) InsertBulk(_ context.Context, reports []*domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range reports {
		if r == nil || r.ReportID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.ReportID]; exists {
			continue
		}
		reportCopy := *r
		s.data[r.ReportID] = &reportCopy
	}
	return nil
}

// GetByContract retrieves all reports for a contract, ordered by generated_at ASC.
func (s *ReportStore) GetByContract(_ context.Context, address string) ([]*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Report
	for _, r := range s.data {
		if r.Contract == address {
			reportCopy := *r
			result = append(result, &reportCopy)
		}
	}

	sortReports(result)
	return result, nil
}

// GetByTimeRange retrieves reports generated within [start, end] (inclusive).
func (s *ReportStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Report
	for _, r := range s.data {
		if r.GeneratedAt >= start && r.GeneratedAt <= end {
			reportCopy := *r
			result = append(result, &reportCopy)
		}
	}

	sortReports(result)
	return result, nil
}

// sortReports orders by generated_at ASC with report_id as tiebreaker.
func sortReports(reports []*domain.Report) {
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].GeneratedAt != reports[j].GeneratedAt {
			return reports[i].GeneratedAt < reports[j].GeneratedAt
		}
		return reports[i].ReportID < reports[j].ReportID
	})
}

// Verify interface compliance at compile time.
var (
	_ storage.ReportStore        = (*ReportStore)(nil)
	_ storage.ReportArchiveStore = (*ReportStore)(nil)
)
