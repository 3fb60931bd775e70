package storage

import (
	"context"

	"rugwatch/internal/domain"
)

// ContractStore provides access to contracts storage.
type ContractStore interface {
	// Insert adds a new contract record. Returns ErrDuplicateKey if address exists.
	Insert(ctx context.Context, c *domain.ContractRecord) error

	// GetByAddress retrieves a record by contract address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.ContractRecord, error)

	// GetByDeployer retrieves all records for a deployer, ordered by deployed_at ASC.
	GetByDeployer(ctx context.Context, deployer string) ([]*domain.ContractRecord, error)

	// GetByTimeRange retrieves records deployed within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ContractRecord, error)
}

// TokenAssessmentStore provides access to token_assessments storage.
type TokenAssessmentStore interface {
	// Insert adds a new assessment. Returns ErrDuplicateKey if the contract
	// was already assessed.
	Insert(ctx context.Context, a *domain.TokenAssessment) error

	// GetByContract retrieves the assessment for a contract. Returns ErrNotFound if not exists.
	GetByContract(ctx context.Context, address string) (*domain.TokenAssessment, error)

	// GetByLabel retrieves all assessments with a given label, ordered by assessed_at ASC.
	GetByLabel(ctx context.Context, label domain.TokenLabel) ([]*domain.TokenAssessment, error)

	// GetAll retrieves all assessments, ordered by assessed_at ASC.
	GetAll(ctx context.Context) ([]*domain.TokenAssessment, error)
}

// DeployerHistoryStore provides access to the append-only per-deployer
// assessment trail. Entries are never removed or mutated; insertion
// order is the authoritative order.
type DeployerHistoryStore interface {
	// Append adds an assessment to a deployer's history.
	Append(ctx context.Context, deployer string, a *domain.TokenAssessment) error

	// ListByDeployer retrieves a deployer's history in insertion order.
	// A deployer with no history yields an empty slice, not an error.
	ListByDeployer(ctx context.Context, deployer string) ([]*domain.TokenAssessment, error)

	// Deployers retrieves all deployer addresses with at least one entry.
	Deployers(ctx context.Context) ([]string, error)
}

// DeployerAssessmentStore provides access to deployer_assessments
// storage. Recomputations append new versions; the latest version is
// the current reputation.
type DeployerAssessmentStore interface {
	// Insert appends a new assessment version for a deployer.
	Insert(ctx context.Context, a *domain.DeployerAssessment) error

	// GetLatest retrieves the most recent assessment for a deployer.
	// Returns ErrNotFound if the deployer was never assessed.
	GetLatest(ctx context.Context, deployer string) (*domain.DeployerAssessment, error)

	// ListLatest retrieves the most recent assessment of every deployer.
	ListLatest(ctx context.Context) ([]*domain.DeployerAssessment, error)
}

// ReportStore provides access to reports storage.
type ReportStore interface {
	// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
	Insert(ctx context.Context, r *domain.Report) error

	// GetByContract retrieves all reports for a contract, ordered by generated_at ASC.
	GetByContract(ctx context.Context, address string) ([]*domain.Report, error)

	// GetByTimeRange retrieves reports generated within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Report, error)
}

// ReportArchiveStore is the analytical archive for emitted reports.
type ReportArchiveStore interface {
	// InsertBulk archives multiple reports. Duplicates are the archive's
	// concern; the caller never retries.
	InsertBulk(ctx context.Context, reports []*domain.Report) error
}
