// Package report merges token and deployer assessments into the
// terminal Report record.
package report

import (
	"errors"
	"fmt"
	"time"

	"rugwatch/internal/domain"
	"rugwatch/internal/idhash"
)

// Assembler errors.
var (
	ErrMissingRecord     = errors.New("assemble: contract record is missing or incomplete")
	ErrMissingToken      = errors.New("assemble: token assessment is missing or incomplete")
	ErrMissingReputation = errors.New("assemble: deployer assessment is missing or incomplete")
	ErrAddressMismatch   = errors.New("assemble: assessment does not belong to the contract record")
)

// Assembler produces Reports. Pure merge, no computation: given the
// same inputs and clock it always yields an identical Report.
type Assembler struct {
	clock func() time.Time
}

// NewAssembler creates an assembler. A nil clock defaults to time.Now;
// tests pass a fixed clock for deterministic output.
func NewAssembler(clock func() time.Time) *Assembler {
	if clock == nil {
		clock = time.Now
	}
	return &Assembler{clock: clock}
}

// Assemble merges a contract record with its two assessments.
// Fails if any input is missing required fields or the assessments do
// not belong to the record.
func (a *Assembler) Assemble(record *domain.ContractRecord, token *domain.TokenAssessment, reputation *domain.DeployerAssessment) (*domain.Report, error) {
	if record == nil || record.Address == "" || record.Deployer == "" {
		return nil, ErrMissingRecord
	}
	if token == nil || token.ContractAddress == "" || token.Label == "" {
		return nil, ErrMissingToken
	}
	if reputation == nil || reputation.Deployer == "" || reputation.Label == "" {
		return nil, ErrMissingReputation
	}
	if token.ContractAddress != record.Address {
		return nil, fmt.Errorf("%w: token assessment for %s, record %s",
			ErrAddressMismatch, token.ContractAddress, record.Address)
	}
	if reputation.Deployer != record.Deployer {
		return nil, fmt.Errorf("%w: deployer assessment for %s, record deployer %s",
			ErrAddressMismatch, reputation.Deployer, record.Deployer)
	}

	generatedAt := a.clock().UnixMilli()

	return &domain.Report{
		ReportID:    idhash.ComputeReportID(record.Address, record.Deployer, token.RiskScore, reputation.Score, generatedAt),
		Contract:    record.Address,
		Deployer:    record.Deployer,
		Token:       token,
		Reputation:  reputation,
		GeneratedAt: generatedAt,
	}, nil
}
