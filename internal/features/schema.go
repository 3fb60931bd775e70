// Package features converts contract records and deployer histories
// into fixed-length feature vectors. Field order is governed by
// explicit schema descriptors shared with the classifiers, so extractor
// and scorer can never drift apart silently.
package features

import "rugwatch/internal/domain"

// Schema is an ordered list of named feature fields. A vector is valid
// against a schema iff its length equals the schema length; values are
// positional in schema order.
type Schema struct {
	name   string
	fields []string
	index  map[string]int
}

// NewSchema builds a schema from an ordered field list.
func NewSchema(name string, fields []string) *Schema {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f] = i
	}
	return &Schema{name: name, fields: fields, index: index}
}

// Name returns the schema identifier.
func (s *Schema) Name() string { return s.name }

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns the ordered field names.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Index returns the position of a named field, or -1 if unknown.
func (s *Schema) Index(field string) int {
	i, ok := s.index[field]
	if !ok {
		return -1
	}
	return i
}

// Matches reports whether a vector has the schema's length.
func (s *Schema) Matches(n int) bool { return n == len(s.fields) }

// Token feature field names. Structural metrics come first, audit
// flags follow in domain.FlagNames order.
const (
	FieldLineCount     = "line_count"
	FieldFunctionCount = "function_count"
	FieldPublicCount   = "public_symbol_count"
	FieldModifierCount = "modifier_usage_count"
)

// Deployer feature field names.
const (
	FieldNContracts     = "n_contracts"
	FieldNSafe          = "n_safe"
	FieldNSuspicious    = "n_suspicious"
	FieldNRugpull       = "n_rugpull"
	FieldFracSafe       = "frac_safe"
	FieldFracSuspicious = "frac_suspicious"
	FieldFracRugpull    = "frac_rugpull"
)

// TokenSchema returns the schema for token feature vectors:
// [line_count, function_count, public_symbol_count, modifier_usage_count,
// has_mint, has_blacklist, has_trading_lock, has_set_fee, has_max_tx].
func TokenSchema() *Schema {
	fields := []string{
		FieldLineCount,
		FieldFunctionCount,
		FieldPublicCount,
		FieldModifierCount,
	}
	fields = append(fields, domain.FlagNames...)
	return NewSchema("token_v1", fields)
}

// DeployerSchema returns the schema for deployer feature vectors:
// [n_contracts, n_safe, n_suspicious, n_rugpull,
// frac_safe, frac_suspicious, frac_rugpull].
func DeployerSchema() *Schema {
	return NewSchema("deployer_v1", []string{
		FieldNContracts,
		FieldNSafe,
		FieldNSuspicious,
		FieldNRugpull,
		FieldFracSafe,
		FieldFracSuspicious,
		FieldFracRugpull,
	})
}
