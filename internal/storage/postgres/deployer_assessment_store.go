package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// DeployerAssessmentStore implements storage.DeployerAssessmentStore
// using PostgreSQL. Versions append; the highest seq per deployer is
// the current reputation.
type DeployerAssessmentStore struct {
	pool *Pool
}

// NewDeployerAssessmentStore creates a new DeployerAssessmentStore.
func NewDeployerAssessmentStore(pool *Pool) *DeployerAssessmentStore {
	return &DeployerAssessmentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DeployerAssessmentStore = (*DeployerAssessmentStore)(nil)

// Insert appends a new assessment version for a deployer.
func (s *DeployerAssessmentStore) Insert(ctx context.Context, a *domain.DeployerAssessment) error {
	if a == nil || a.Deployer == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO deployer_assessments (
			deployer, score, risk_class, label, n_contracts, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		a.Deployer,
		a.Score,
		string(a.RiskClass),
		string(a.Label),
		a.NContracts,
		a.AssessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deployer assessment: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent assessment for a deployer.
func (s *DeployerAssessmentStore) GetLatest(ctx context.Context, deployer string) (*domain.DeployerAssessment, error) {
	query := `
		SELECT deployer, score, risk_class, label, n_contracts, assessed_at
		FROM deployer_assessments
		WHERE deployer = $1
		ORDER BY seq DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, deployer)
	a, err := scanDeployerAssessment(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest deployer assessment: %w", err)
	}
	return a, nil
}

// ListLatest retrieves the most recent assessment of every deployer.
func (s *DeployerAssessmentStore) ListLatest(ctx context.Context) ([]*domain.DeployerAssessment, error) {
	query := `
		SELECT DISTINCT ON (deployer)
			deployer, score, risk_class, label, n_contracts, assessed_at
		FROM deployer_assessments
		ORDER BY deployer ASC, seq DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list latest deployer assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*domain.DeployerAssessment
	for rows.Next() {
		var a domain.DeployerAssessment
		var class, label string

		err := rows.Scan(
			&a.Deployer,
			&a.Score,
			&class,
			&label,
			&a.NContracts,
			&a.AssessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan deployer assessment row: %w", err)
		}

		a.RiskClass = domain.RiskLevel(class)
		a.Label = domain.DeployerLabel(label)
		assessments = append(assessments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployer assessment rows: %w", err)
	}

	return assessments, nil
}

// scanDeployerAssessment scans a single row into a DeployerAssessment.
func scanDeployerAssessment(row pgx.Row) (*domain.DeployerAssessment, error) {
	var a domain.DeployerAssessment
	var class, label string

	err := row.Scan(
		&a.Deployer,
		&a.Score,
		&class,
		&label,
		&a.NContracts,
		&a.AssessedAt,
	)
	if err != nil {
		return nil, err
	}

	a.RiskClass = domain.RiskLevel(class)
	a.Label = domain.DeployerLabel(label)
	return &a, nil
}
