// Package sink delivers finished reports to downstream consumers.
package sink

import (
	"context"

	"rugwatch/internal/domain"
)

// ReportSink publishes completed reports to a downstream consumer.
// Publish must be safe for concurrent use.
type ReportSink interface {
	Publish(ctx context.Context, r *domain.Report) error
	Close() error
}
