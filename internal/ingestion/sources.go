package ingestion

import (
	"context"
	"errors"

	"rugwatch/internal/domain"
)

// ErrSourceUnavailable indicates no verified source exists for a contract.
var ErrSourceUnavailable = errors.New("verified source unavailable")

// DeploymentSource streams newly deployed contracts from an external feed.
// Records may arrive without source code; the Runner resolves it through
// a SourceFetcher before assessment.
type DeploymentSource interface {
	// Subscribe returns a channel of deployment records. The channel is
	// closed when the context is cancelled or the source shuts down.
	Subscribe(ctx context.Context) (<-chan *domain.ContractRecord, error)
	Close() error
}

// SourceFetcher retrieves verified contract source code by address.
// Returns ErrSourceUnavailable when the contract has no verified source.
type SourceFetcher interface {
	FetchSource(ctx context.Context, address string) (string, error)
}
