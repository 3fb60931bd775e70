package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// TokenAssessmentStore implements storage.TokenAssessmentStore using PostgreSQL.
type TokenAssessmentStore struct {
	pool *Pool
}

// NewTokenAssessmentStore creates a new TokenAssessmentStore.
func NewTokenAssessmentStore(pool *Pool) *TokenAssessmentStore {
	return &TokenAssessmentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenAssessmentStore = (*TokenAssessmentStore)(nil)

// Insert adds a new assessment. Returns ErrDuplicateKey if the contract
// was already assessed.
func (s *TokenAssessmentStore) Insert(ctx context.Context, a *domain.TokenAssessment) error {
	query := `
		INSERT INTO token_assessments (
			contract_address, risk_score, risk_level, label, assessed_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ContractAddress,
		a.RiskScore,
		string(a.RiskLevel),
		string(a.Label),
		a.AssessedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token assessment: %w", err)
	}
	return nil
}

// GetByContract retrieves the assessment for a contract. Returns ErrNotFound if not exists.
func (s *TokenAssessmentStore) GetByContract(ctx context.Context, address string) (*domain.TokenAssessment, error) {
	query := `
		SELECT contract_address, risk_score, risk_level, label, assessed_at
		FROM token_assessments
		WHERE contract_address = $1
	`

	row := s.pool.QueryRow(ctx, query, address)
	a, err := scanTokenAssessment(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token assessment by contract: %w", err)
	}
	return a, nil
}

// GetByLabel retrieves all assessments with a given label, ordered by assessed_at ASC.
func (s *TokenAssessmentStore) GetByLabel(ctx context.Context, label domain.TokenLabel) ([]*domain.TokenAssessment, error) {
	query := `
		SELECT contract_address, risk_score, risk_level, label, assessed_at
		FROM token_assessments
		WHERE label = $1
		ORDER BY assessed_at ASC, contract_address ASC
	`

	rows, err := s.pool.Query(ctx, query, string(label))
	if err != nil {
		return nil, fmt.Errorf("get token assessments by label: %w", err)
	}
	defer rows.Close()

	return scanTokenAssessments(rows)
}

// GetAll retrieves all assessments, ordered by assessed_at ASC.
func (s *TokenAssessmentStore) GetAll(ctx context.Context) ([]*domain.TokenAssessment, error) {
	query := `
		SELECT contract_address, risk_score, risk_level, label, assessed_at
		FROM token_assessments
		ORDER BY assessed_at ASC, contract_address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all token assessments: %w", err)
	}
	defer rows.Close()

	return scanTokenAssessments(rows)
}

// scanTokenAssessment scans a single row into a TokenAssessment.
func scanTokenAssessment(row pgx.Row) (*domain.TokenAssessment, error) {
	var a domain.TokenAssessment
	var level, label string

	err := row.Scan(
		&a.ContractAddress,
		&a.RiskScore,
		&level,
		&label,
		&a.AssessedAt,
	)
	if err != nil {
		return nil, err
	}

	a.RiskLevel = domain.RiskLevel(level)
	a.Label = domain.TokenLabel(label)
	return &a, nil
}

// scanTokenAssessments scans multiple rows into a slice of TokenAssessment.
func scanTokenAssessments(rows pgx.Rows) ([]*domain.TokenAssessment, error) {
	var assessments []*domain.TokenAssessment

	for rows.Next() {
		var a domain.TokenAssessment
		var level, label string

		err := rows.Scan(
			&a.ContractAddress,
			&a.RiskScore,
			&level,
			&label,
			&a.AssessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan token assessment row: %w", err)
		}

		a.RiskLevel = domain.RiskLevel(level)
		a.Label = domain.TokenLabel(label)
		assessments = append(assessments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token assessment rows: %w", err)
	}

	return assessments, nil
}
