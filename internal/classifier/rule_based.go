package classifier

import (
	"fmt"

	"rugwatch/internal/features"
)

// Rule fires when a named field reaches a minimum value and adds a
// fixed amount of risk.
type Rule struct {
	Field string  `json:"field"`
	Min   float64 `json:"min"`  // fires when vec[field] >= Min
	Risk  float64 `json:"risk"` // added to the score when fired
}

// RuleScorer is the fallback scorer: a flat rule list summed and
// clamped. No trained model required, so it can serve when model
// loading fails at startup.
type RuleScorer struct {
	schema *features.Schema
	rules  []Rule
}

// NewRuleScorer builds a rule scorer. Rules over unknown fields are a
// configuration error.
func NewRuleScorer(schema *features.Schema, rules []Rule) (*RuleScorer, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("rule scorer: %w", ErrModelUnavailable)
	}
	for _, r := range rules {
		if schema.Index(r.Field) < 0 {
			return nil, fmt.Errorf("rule scorer: rule on unknown field %q in schema %s", r.Field, schema.Name())
		}
	}
	return &RuleScorer{schema: schema, rules: rules}, nil
}

// Score sums the risk of all fired rules.
func (s *RuleScorer) Score(vec []float64) (float64, error) {
	if err := checkSchema(s.schema, vec); err != nil {
		return 0, err
	}

	var sum float64
	for _, r := range s.rules {
		if vec[s.schema.Index(r.Field)] >= r.Min {
			sum += r.Risk
		}
	}
	return clamp01(sum), nil
}

// Schema returns the expected input schema.
func (s *RuleScorer) Schema() *features.Schema { return s.schema }

// ID returns the scorer identifier.
func (s *RuleScorer) ID() string {
	return fmt.Sprintf("RULE_BASED(%s,n=%d)", s.schema.Name(), len(s.rules))
}

// Compile-time interface check.
var _ Scorer = (*RuleScorer)(nil)
