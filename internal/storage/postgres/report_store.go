package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// ReportStore implements storage.ReportStore using PostgreSQL.
type ReportStore struct {
	pool *Pool
}

// NewReportStore creates a new ReportStore.
func NewReportStore(pool *Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReportStore = (*ReportStore)(nil)

// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
func (s *ReportStore) Insert(ctx context.Context, r *domain.Report) error {
	if r == nil || r.ReportID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO reports (
			report_id, contract_address, deployer,
			token_score, token_level, token_label,
			deployer_score, deployer_class, deployer_label,
			generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		r.ReportID,
		r.Contract,
		r.Deployer,
		r.Token.RiskScore,
		string(r.Token.RiskLevel),
		string(r.Token.Label),
		r.Reputation.Score,
		string(r.Reputation.RiskClass),
		string(r.Reputation.Label),
		r.GeneratedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetByContract retrieves all reports for a contract, ordered by generated_at ASC.
func (s *ReportStore) GetByContract(ctx context.Context, address string) ([]*domain.Report, error) {
	query := `
		SELECT report_id, contract_address, deployer,
			token_score, token_level, token_label,
			deployer_score, deployer_class, deployer_label,
			generated_at
		FROM reports
		WHERE contract_address = $1
		ORDER BY generated_at ASC, report_id ASC
	`

	rows, err := s.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("get reports by contract: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// GetByTimeRange retrieves reports generated within [start, end] (inclusive).
func (s *ReportStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Report, error) {
	query := `
		SELECT report_id, contract_address, deployer,
			token_score, token_level, token_label,
			deployer_score, deployer_class, deployer_label,
			generated_at
		FROM reports
		WHERE generated_at >= $1 AND generated_at <= $2
		ORDER BY generated_at ASC, report_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get reports by time range: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// scanReports scans multiple rows into a slice of Report.
func scanReports(rows pgx.Rows) ([]*domain.Report, error) {
	var reports []*domain.Report

	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}

	return reports, nil
}

// scanReport scans a single row into a Report.
func scanReport(row pgx.Row) (*domain.Report, error) {
	var r domain.Report
	var token domain.TokenAssessment
	var reputation domain.DeployerAssessment
	var tokenLevel, tokenLabel, depClass, depLabel string

	err := row.Scan(
		&r.ReportID,
		&r.Contract,
		&r.Deployer,
		&token.RiskScore,
		&tokenLevel,
		&tokenLabel,
		&reputation.Score,
		&depClass,
		&depLabel,
		&r.GeneratedAt,
	)
	if err != nil {
		return nil, err
	}

	token.ContractAddress = r.Contract
	token.RiskLevel = domain.RiskLevel(tokenLevel)
	token.Label = domain.TokenLabel(tokenLabel)
	reputation.Deployer = r.Deployer
	reputation.RiskClass = domain.RiskLevel(depClass)
	reputation.Label = domain.DeployerLabel(depLabel)

	r.Token = &token
	r.Reputation = &reputation
	return &r, nil
}
