package classifier

import (
	"errors"

	"rugwatch/internal/features"
)

// Scorer types selectable via configuration.
const (
	ScorerTypeTreeEnsemble = "TREE_ENSEMBLE"
	ScorerTypeLinear       = "LINEAR"
	ScorerTypeRuleBased    = "RULE_BASED"
)

// Factory errors.
var (
	ErrUnknownScorerType = errors.New("unknown scorer type")
	ErrMissingTrees      = errors.New("TREE_ENSEMBLE requires Trees")
	ErrMissingWeights    = errors.New("LINEAR requires Weights")
	ErrMissingRules      = errors.New("RULE_BASED requires Rules")
)

// ScorerConfig selects and parameterizes a scorer implementation.
// Only the fields for the chosen type need to be set.
type ScorerConfig struct {
	ScorerType string `json:"scorer_type"`

	// TREE_ENSEMBLE parameters
	Base  float64     `json:"base,omitempty"`
	Trees []*TreeNode `json:"trees,omitempty"`

	// LINEAR parameters
	Bias    float64            `json:"bias,omitempty"`
	Weights map[string]float64 `json:"weights,omitempty"`

	// RULE_BASED parameters
	Rules []Rule `json:"rules,omitempty"`
}

// FromConfig creates a Scorer over the given schema.
// Validates required parameters per scorer type.
func FromConfig(schema *features.Schema, cfg ScorerConfig) (Scorer, error) {
	switch cfg.ScorerType {
	case ScorerTypeTreeEnsemble:
		if len(cfg.Trees) == 0 {
			return nil, ErrMissingTrees
		}
		return NewTreeEnsembleScorer(schema, cfg.Base, cfg.Trees)
	case ScorerTypeLinear:
		if len(cfg.Weights) == 0 {
			return nil, ErrMissingWeights
		}
		return NewLinearScorer(schema, cfg.Bias, cfg.Weights)
	case ScorerTypeRuleBased:
		if len(cfg.Rules) == 0 {
			return nil, ErrMissingRules
		}
		return NewRuleScorer(schema, cfg.Rules)
	default:
		return nil, ErrUnknownScorerType
	}
}
