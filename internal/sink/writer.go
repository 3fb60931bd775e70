package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"rugwatch/internal/domain"
)

// WriterSink writes one JSON report per line to an io.Writer,
// typically stdout. Writes are serialized.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

var _ ReportSink = (*WriterSink)(nil)

// NewWriterSink wraps w as a report sink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Publish writes the report as a single JSON line.
func (s *WriterSink) Publish(_ context.Context, r *domain.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Close is a no-op; the underlying writer is owned by the caller.
func (s *WriterSink) Close() error { return nil }
