package features

import (
	"errors"
	"testing"

	"rugwatch/internal/domain"
)

const srcSimple = `pragma solidity ^0.8.19;

contract Simple {
    address public owner;

    modifier onlyOwner() {
        require(msg.sender == owner);
        _;
    }

    function mint(address to) external onlyOwner {
    }

    function transfer(address to) external {
    }
}
`

func TestExtract_VectorShape(t *testing.T) {
	e := NewExtractor()

	record := &domain.ContractRecord{
		Address: "0xabc",
		Source:  srcSimple,
	}
	flags := domain.NewAuditFlags()
	flags[domain.FlagHasMint] = true

	vec, err := e.Extract(record, flags)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	schema := e.Schema()
	if len(vec) != schema.Len() {
		t.Fatalf("vector length: got %d, want %d", len(vec), schema.Len())
	}

	// Structural metrics
	if got := vec[schema.Index(FieldFunctionCount)]; got != 2 {
		t.Errorf("function_count: got %v, want 2", got)
	}
	if got := vec[schema.Index(FieldModifierCount)]; got != 1 {
		t.Errorf("modifier_usage_count: got %v, want 1", got)
	}
	if vec[schema.Index(FieldLineCount)] <= 0 {
		t.Error("line_count should be positive")
	}
	if vec[schema.Index(FieldPublicCount)] <= 0 {
		t.Error("public_symbol_count should be positive")
	}

	// Flag fields are 0/1 in canonical order
	if got := vec[schema.Index(domain.FlagHasMint)]; got != 1 {
		t.Errorf("has_mint: got %v, want 1", got)
	}
	if got := vec[schema.Index(domain.FlagHasBlacklist)]; got != 0 {
		t.Errorf("has_blacklist: got %v, want 0", got)
	}
}

func TestExtract_MissingSource(t *testing.T) {
	e := NewExtractor()

	record := &domain.ContractRecord{Address: "0xdef"}
	_, err := e.Extract(record, domain.NewAuditFlags())
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("got %v, want ErrMissingSource", err)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := NewExtractor()
	record := &domain.ContractRecord{Address: "0xabc", Source: srcSimple}
	flags := domain.NewAuditFlags()

	first, err := e.Extract(record, flags)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Extract(record, flags)
		if err != nil {
			t.Fatalf("Extract run %d: %v", i, err)
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d: field %d changed: %v vs %v", i, j, first[j], again[j])
			}
		}
	}
}

func TestTokenSchema_Order(t *testing.T) {
	s := TokenSchema()

	want := []string{
		FieldLineCount,
		FieldFunctionCount,
		FieldPublicCount,
		FieldModifierCount,
		domain.FlagHasMint,
		domain.FlagHasBlacklist,
		domain.FlagHasTradingLock,
		domain.FlagHasSetFee,
		domain.FlagHasMaxTx,
	}
	got := s.Fields()
	if len(got) != len(want) {
		t.Fatalf("schema length: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSchema_Index(t *testing.T) {
	s := TokenSchema()
	if s.Index(FieldLineCount) != 0 {
		t.Errorf("line_count index: got %d, want 0", s.Index(FieldLineCount))
	}
	if s.Index("no_such_field") != -1 {
		t.Errorf("unknown field should index -1")
	}
}

func TestDeployerVector_Fractions(t *testing.T) {
	s := DeployerSchema()
	vec := DeployerVector(1, 0, 4)

	if got := vec[s.Index(FieldNContracts)]; got != 5 {
		t.Errorf("n_contracts: got %v, want 5", got)
	}
	if got := vec[s.Index(FieldFracRugpull)]; got != 0.8 {
		t.Errorf("frac_rugpull: got %v, want 0.8", got)
	}

	// Fractions sum to 1 when history exists
	sum := vec[s.Index(FieldFracSafe)] + vec[s.Index(FieldFracSuspicious)] + vec[s.Index(FieldFracRugpull)]
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("fraction sum: got %v, want 1", sum)
	}
}

func TestDeployerVector_EmptyHistory(t *testing.T) {
	vec := DeployerVector(0, 0, 0)
	for i, v := range vec {
		if v != 0 {
			t.Errorf("field %d: got %v, want 0", i, v)
		}
	}
}
