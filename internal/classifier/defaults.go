package classifier

import (
	"rugwatch/internal/domain"
	"rugwatch/internal/features"
)

// Pinned default models. Weights come from offline training and are
// configuration: swap them without touching the pipeline. Flag trees
// carry non-negative right-branch gains, so the default token model is
// monotone in every risk flag.

// flagStump builds a depth-1 tree over a 0/1 flag field.
func flagStump(field string, risk float64) *TreeNode {
	return &TreeNode{
		Field:     field,
		Threshold: 0.5,
		Left:      &TreeNode{Value: 0},
		Right:     &TreeNode{Value: risk},
	}
}

// DefaultTokenScorerConfig returns the pinned token model: an additive
// tree ensemble over audit flags plus one structural tree.
func DefaultTokenScorerConfig() ScorerConfig {
	return ScorerConfig{
		ScorerType: ScorerTypeTreeEnsemble,
		Base:       0,
		Trees: []*TreeNode{
			flagStump(domain.FlagHasMint, 0.30),
			flagStump(domain.FlagHasBlacklist, 0.25),
			flagStump(domain.FlagHasTradingLock, 0.25),
			flagStump(domain.FlagHasSetFee, 0.15),
			flagStump(domain.FlagHasMaxTx, 0.10),
			{
				// Very small verified sources correlate with throwaway tokens.
				Field:     features.FieldLineCount,
				Threshold: 40,
				Left:      &TreeNode{Value: 0.08},
				Right:     &TreeNode{Value: 0.02},
			},
		},
	}
}

// DefaultDeployerScorerConfig returns the pinned deployer model: a
// linear model dominated by the rugpull fraction of the history.
func DefaultDeployerScorerConfig() ScorerConfig {
	return ScorerConfig{
		ScorerType: ScorerTypeLinear,
		Bias:       0,
		Weights: map[string]float64{
			features.FieldFracRugpull:    1.0,
			features.FieldFracSuspicious: 0.4,
		},
	}
}

// FallbackTokenScorerConfig returns the rule-based token fallback,
// usable when no trained model can be loaded.
func FallbackTokenScorerConfig() ScorerConfig {
	return ScorerConfig{
		ScorerType: ScorerTypeRuleBased,
		Rules: []Rule{
			{Field: domain.FlagHasMint, Min: 0.5, Risk: 0.30},
			{Field: domain.FlagHasBlacklist, Min: 0.5, Risk: 0.25},
			{Field: domain.FlagHasTradingLock, Min: 0.5, Risk: 0.25},
			{Field: domain.FlagHasSetFee, Min: 0.5, Risk: 0.15},
			{Field: domain.FlagHasMaxTx, Min: 0.5, Risk: 0.10},
		},
	}
}

// FallbackDeployerScorerConfig returns the rule-based deployer fallback.
func FallbackDeployerScorerConfig() ScorerConfig {
	return ScorerConfig{
		ScorerType: ScorerTypeRuleBased,
		Rules: []Rule{
			{Field: features.FieldFracRugpull, Min: 0.5, Risk: 0.70},
			{Field: features.FieldFracRugpull, Min: 0.25, Risk: 0.20},
			{Field: features.FieldFracSuspicious, Min: 0.5, Risk: 0.20},
		},
	}
}
