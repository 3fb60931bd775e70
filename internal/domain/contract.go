package domain

// ContractRecord represents a detected contract deployment.
// Corresponds to the contracts table in PostgreSQL.
// Immutable after creation.
type ContractRecord struct {
	Address    string // contract address, PRIMARY KEY
	Deployer   string // deployer account address
	Source     string // raw verified source text
	DeployedAt int64  // Unix timestamp in milliseconds
	CreatedAt  int64  // record creation timestamp (ms)
}

// HasSource reports whether the record carries source text.
// Records without source must not enter feature extraction.
func (c *ContractRecord) HasSource() bool {
	return c != nil && c.Source != ""
}
