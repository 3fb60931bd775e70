package features

import (
	"fmt"
	"regexp"
	"strings"

	"rugwatch/internal/audit"
	"rugwatch/internal/domain"
)

// ErrMissingSource is returned when a record without source text is fed
// to the extractor. Non-retryable: the caller must re-fetch the source.
var ErrMissingSource = fmt.Errorf("contract record has no source text")

var (
	functionDeclRe = regexp.MustCompile(`(?i)\bfunction\s+\w+\s*\(`)
	publicSymbolRe = regexp.MustCompile(`(?i)\b(public|external)\b`)
	modifierDeclRe = regexp.MustCompile(`(?i)\bmodifier\s+(\w+)`)
	wordRe         = regexp.MustCompile(`\w+`)
)

// Extractor computes token feature vectors. Structural metrics are
// measured on comment-stripped source; flag fields copy the auditor's
// output as 0/1 in schema order.
type Extractor struct {
	schema *Schema
}

// NewExtractor creates a token feature extractor over TokenSchema.
func NewExtractor() *Extractor {
	return &Extractor{schema: TokenSchema()}
}

// Schema returns the extractor's output schema.
func (e *Extractor) Schema() *Schema { return e.schema }

// Extract converts a contract record plus its audit flags into a
// fixed-length vector. Returns ErrMissingSource (wrapped with the
// contract address) when the record carries no source text.
func (e *Extractor) Extract(record *domain.ContractRecord, flags domain.AuditFlags) (domain.TokenFeatureVector, error) {
	if !record.HasSource() {
		addr := ""
		if record != nil {
			addr = record.Address
		}
		return nil, fmt.Errorf("extract features for contract %s: %w", addr, ErrMissingSource)
	}

	code := audit.StripComments(record.Source)

	vec := make(domain.TokenFeatureVector, e.schema.Len())
	vec[e.schema.Index(FieldLineCount)] = float64(countLines(record.Source))
	vec[e.schema.Index(FieldFunctionCount)] = float64(len(functionDeclRe.FindAllStringIndex(code, -1)))
	vec[e.schema.Index(FieldPublicCount)] = float64(len(publicSymbolRe.FindAllStringIndex(code, -1)))
	vec[e.schema.Index(FieldModifierCount)] = float64(countModifierUsages(code))

	for _, name := range domain.FlagNames {
		if flags[name] {
			vec[e.schema.Index(name)] = 1
		}
	}

	return vec, nil
}

// countLines counts newline-separated lines in the raw source.
func countLines(source string) int {
	if source == "" {
		return 0
	}
	return strings.Count(source, "\n") + 1
}

// countModifierUsages counts applications of declared modifiers.
// A declaration itself does not count; each later occurrence of a
// declared modifier name does.
func countModifierUsages(code string) int {
	declared := make(map[string]bool)
	for _, m := range modifierDeclRe.FindAllStringSubmatch(code, -1) {
		declared[strings.ToLower(m[1])] = true
	}
	if len(declared) == 0 {
		return 0
	}

	var usages int
	for _, word := range wordRe.FindAllString(code, -1) {
		if declared[strings.ToLower(word)] {
			usages++
		}
	}
	// Subtract one occurrence per declaration (the declaration site).
	usages -= len(declared)
	if usages < 0 {
		usages = 0
	}
	return usages
}
