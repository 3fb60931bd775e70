package postgres

import (
	"context"
	"fmt"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// DeployerHistoryStore implements storage.DeployerHistoryStore using
// PostgreSQL. A bigserial seq column pins insertion order; rows are
// never updated or deleted.
type DeployerHistoryStore struct {
	pool *Pool
}

// NewDeployerHistoryStore creates a new DeployerHistoryStore.
func NewDeployerHistoryStore(pool *Pool) *DeployerHistoryStore {
	return &DeployerHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DeployerHistoryStore = (*DeployerHistoryStore)(nil)

// Append adds an assessment to a deployer's history.
func (s *DeployerHistoryStore) Append(ctx context.Context, deployer string, a *domain.TokenAssessment) error {
	if deployer == "" || a == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO deployer_history (
			deployer, contract_address, risk_score, risk_level, label, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		deployer,
		a.ContractAddress,
		a.RiskScore,
		string(a.RiskLevel),
		string(a.Label),
		a.AssessedAt,
	)
	if err != nil {
		return fmt.Errorf("append deployer history: %w", err)
	}
	return nil
}

// ListByDeployer retrieves a deployer's history in insertion order.
func (s *DeployerHistoryStore) ListByDeployer(ctx context.Context, deployer string) ([]*domain.TokenAssessment, error) {
	query := `
		SELECT contract_address, risk_score, risk_level, label, assessed_at
		FROM deployer_history
		WHERE deployer = $1
		ORDER BY seq ASC
	`

	rows, err := s.pool.Query(ctx, query, deployer)
	if err != nil {
		return nil, fmt.Errorf("list deployer history: %w", err)
	}
	defer rows.Close()

	return scanTokenAssessments(rows)
}

// Deployers retrieves all deployer addresses with at least one entry.
func (s *DeployerHistoryStore) Deployers(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT deployer
		FROM deployer_history
		ORDER BY deployer ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list deployers: %w", err)
	}
	defer rows.Close()

	var deployers []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan deployer row: %w", err)
		}
		deployers = append(deployers, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployer rows: %w", err)
	}

	return deployers, nil
}
