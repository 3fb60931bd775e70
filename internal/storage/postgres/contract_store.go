package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// ContractStore implements storage.ContractStore using PostgreSQL.
type ContractStore struct {
	pool *Pool
}

// NewContractStore creates a new ContractStore.
func NewContractStore(pool *Pool) *ContractStore {
	return &ContractStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ContractStore = (*ContractStore)(nil)

// Insert adds a new contract record. Returns ErrDuplicateKey if address exists.
func (s *ContractStore) Insert(ctx context.Context, c *domain.ContractRecord) error {
	query := `
		INSERT INTO contracts (
			address, deployer, source, deployed_at
		) VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		c.Address,
		c.Deployer,
		c.Source,
		c.DeployedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

// GetByAddress retrieves a record by contract address. Returns ErrNotFound if not exists.
func (s *ContractStore) GetByAddress(ctx context.Context, address string) (*domain.ContractRecord, error) {
	query := `
		SELECT address, deployer, source, deployed_at, created_at
		FROM contracts
		WHERE address = $1
	`

	row := s.pool.QueryRow(ctx, query, address)
	c, err := scanContract(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get contract by address: %w", err)
	}
	return c, nil
}

// GetByDeployer retrieves all records for a deployer, ordered by deployed_at ASC.
func (s *ContractStore) GetByDeployer(ctx context.Context, deployer string) ([]*domain.ContractRecord, error) {
	query := `
		SELECT address, deployer, source, deployed_at, created_at
		FROM contracts
		WHERE deployer = $1
		ORDER BY deployed_at ASC, address ASC
	`

	rows, err := s.pool.Query(ctx, query, deployer)
	if err != nil {
		return nil, fmt.Errorf("get contracts by deployer: %w", err)
	}
	defer rows.Close()

	return scanContracts(rows)
}

// GetByTimeRange retrieves records deployed within [start, end] (inclusive).
func (s *ContractStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ContractRecord, error) {
	query := `
		SELECT address, deployer, source, deployed_at, created_at
		FROM contracts
		WHERE deployed_at >= $1 AND deployed_at <= $2
		ORDER BY deployed_at ASC, address ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get contracts by time range: %w", err)
	}
	defer rows.Close()

	return scanContracts(rows)
}

// scanContract scans a single row into a ContractRecord.
func scanContract(row pgx.Row) (*domain.ContractRecord, error) {
	var c domain.ContractRecord
	err := row.Scan(
		&c.Address,
		&c.Deployer,
		&c.Source,
		&c.DeployedAt,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanContracts scans multiple rows into a slice of ContractRecord.
func scanContracts(rows pgx.Rows) ([]*domain.ContractRecord, error) {
	var contracts []*domain.ContractRecord

	for rows.Next() {
		var c domain.ContractRecord
		err := rows.Scan(
			&c.Address,
			&c.Deployer,
			&c.Source,
			&c.DeployedAt,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan contract row: %w", err)
		}
		contracts = append(contracts, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contract rows: %w", err)
	}

	return contracts, nil
}
