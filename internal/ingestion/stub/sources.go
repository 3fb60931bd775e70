package stub

import (
	"context"
	"sync"

	"rugwatch/internal/domain"
	"rugwatch/internal/ingestion"
)

// StubDeploymentSource replays fixed in-memory deployment records.
// Implements ingestion.DeploymentSource. The channel is closed after
// all records are delivered.
type StubDeploymentSource struct {
	records []*domain.ContractRecord

	closeOnce sync.Once
	done      chan struct{}
}

var _ ingestion.DeploymentSource = (*StubDeploymentSource)(nil)

// NewStubDeploymentSource creates a stub source with the given records.
func NewStubDeploymentSource(records []*domain.ContractRecord) *StubDeploymentSource {
	return &StubDeploymentSource{
		records: records,
		done:    make(chan struct{}),
	}
}

// Subscribe delivers all records in order, then closes the channel.
// Returns copies to prevent mutation.
func (s *StubDeploymentSource) Subscribe(ctx context.Context) (<-chan *domain.ContractRecord, error) {
	ch := make(chan *domain.ContractRecord, len(s.records))

	go func() {
		defer close(ch)
		for _, r := range s.records {
			recordCopy := *r
			select {
			case ch <- &recordCopy:
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}()

	return ch, nil
}

// Close stops delivery.
func (s *StubDeploymentSource) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// StubSourceFetcher returns fixed in-memory source code keyed by address.
// Implements ingestion.SourceFetcher.
type StubSourceFetcher struct {
	sources map[string]string // keyed by contract address
}

// NewStubSourceFetcher creates a stub fetcher with the given sources.
func NewStubSourceFetcher(sources map[string]string) *StubSourceFetcher {
	return &StubSourceFetcher{sources: sources}
}

// FetchSource returns the stored source or ErrSourceUnavailable.
func (s *StubSourceFetcher) FetchSource(_ context.Context, address string) (string, error) {
	src, ok := s.sources[address]
	if !ok || src == "" {
		return "", ingestion.ErrSourceUnavailable
	}
	return src, nil
}
