package sink

import (
	"context"
	"sync"

	"rugwatch/internal/domain"
)

// MemorySink collects published reports in memory. Used in tests and
// single-process pipeline runs.
type MemorySink struct {
	mu      sync.Mutex
	reports []*domain.Report
}

var _ ReportSink = (*MemorySink)(nil)

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Publish appends the report to the internal slice.
func (s *MemorySink) Publish(_ context.Context, r *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reportCopy := *r
	s.reports = append(s.reports, &reportCopy)
	return nil
}

// Reports returns a copy of all published reports in publish order.
func (s *MemorySink) Reports() []*domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Report, len(s.reports))
	for i, r := range s.reports {
		reportCopy := *r
		out[i] = &reportCopy
	}
	return out
}

// Close is a no-op.
func (s *MemorySink) Close() error { return nil }
