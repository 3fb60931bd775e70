package classifier

import (
	"errors"
	"testing"

	"rugwatch/internal/domain"
	"rugwatch/internal/features"
)

// tokenVec builds a token vector with the given structural metrics and
// raised flags.
func tokenVec(t *testing.T, lineCount float64, raised ...string) []float64 {
	t.Helper()

	schema := features.TokenSchema()
	vec := make([]float64, schema.Len())
	vec[schema.Index(features.FieldLineCount)] = lineCount
	for _, flag := range raised {
		i := schema.Index(flag)
		if i < 0 {
			t.Fatalf("unknown flag %q", flag)
		}
		vec[i] = 1
	}
	return vec
}

func TestTreeEnsembleScorer_Score(t *testing.T) {
	schema := features.TokenSchema()
	scorer, err := NewTreeEnsembleScorer(schema, 0.1, []*TreeNode{
		flagStump(domain.FlagHasMint, 0.3),
		{
			Field:     features.FieldLineCount,
			Threshold: 40,
			Left:      &TreeNode{Value: 0.2},
			Right:     &TreeNode{Value: 0},
		},
	})
	if err != nil {
		t.Fatalf("NewTreeEnsembleScorer: %v", err)
	}

	tests := []struct {
		name string
		vec  []float64
		want float64
	}{
		{"no flags, large source", tokenVec(t, 100), 0.1},
		{"mint flag", tokenVec(t, 100, domain.FlagHasMint), 0.4},
		{"mint flag, tiny source", tokenVec(t, 10, domain.FlagHasMint), 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scorer.Score(tt.vec)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if got < tt.want-1e-9 || got > tt.want+1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTreeEnsembleScorer_ClampsToOne(t *testing.T) {
	schema := features.TokenSchema()
	scorer, err := NewTreeEnsembleScorer(schema, 0.9, []*TreeNode{
		flagStump(domain.FlagHasMint, 0.9),
	})
	if err != nil {
		t.Fatalf("NewTreeEnsembleScorer: %v", err)
	}

	got, err := scorer.Score(tokenVec(t, 100, domain.FlagHasMint))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got != 1 {
		t.Errorf("got %v, want clamp to 1", got)
	}
}

func TestTreeEnsembleScorer_UnknownField(t *testing.T) {
	schema := features.TokenSchema()
	_, err := NewTreeEnsembleScorer(schema, 0, []*TreeNode{
		{
			Field:     "no_such_field",
			Threshold: 1,
			Left:      &TreeNode{Value: 0},
			Right:     &TreeNode{Value: 1},
		},
	})
	if err == nil {
		t.Fatal("expected error for unknown split field")
	}
}

func TestTreeEnsembleScorer_SchemaMismatch(t *testing.T) {
	schema := features.TokenSchema()
	scorer, err := NewTreeEnsembleScorer(schema, 0, []*TreeNode{
		flagStump(domain.FlagHasMint, 0.3),
	})
	if err != nil {
		t.Fatalf("NewTreeEnsembleScorer: %v", err)
	}

	_, err = scorer.Score([]float64{1, 2, 3})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("got %v, want ErrSchemaMismatch", err)
	}
}

func TestLinearScorer_Score(t *testing.T) {
	schema := features.DeployerSchema()
	scorer, err := NewLinearScorer(schema, 0, map[string]float64{
		features.FieldFracRugpull:    1.0,
		features.FieldFracSuspicious: 0.4,
	})
	if err != nil {
		t.Fatalf("NewLinearScorer: %v", err)
	}

	vec := features.DeployerVector(1, 1, 2)
	got, err := scorer.Score(vec)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// frac_rugpull 0.5, frac_suspicious 0.25
	want := 0.5 + 0.4*0.25
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLinearScorer_ClampsNegative(t *testing.T) {
	schema := features.DeployerSchema()
	scorer, err := NewLinearScorer(schema, -0.5, map[string]float64{
		features.FieldFracRugpull: 0.2,
	})
	if err != nil {
		t.Fatalf("NewLinearScorer: %v", err)
	}

	got, err := scorer.Score(features.DeployerVector(0, 0, 1))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got != 0 {
		t.Errorf("got %v, want clamp to 0", got)
	}
}

func TestLinearScorer_UnknownField(t *testing.T) {
	_, err := NewLinearScorer(features.DeployerSchema(), 0, map[string]float64{
		"no_such_field": 1,
	})
	if err == nil {
		t.Fatal("expected error for unknown weight field")
	}
}

func TestRuleScorer_Score(t *testing.T) {
	schema := features.TokenSchema()
	scorer, err := NewRuleScorer(schema, []Rule{
		{Field: domain.FlagHasMint, Min: 0.5, Risk: 0.3},
		{Field: domain.FlagHasBlacklist, Min: 0.5, Risk: 0.25},
	})
	if err != nil {
		t.Fatalf("NewRuleScorer: %v", err)
	}

	got, err := scorer.Score(tokenVec(t, 100, domain.FlagHasMint))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got != 0.3 {
		t.Errorf("one rule fired: got %v, want 0.3", got)
	}

	got, err = scorer.Score(tokenVec(t, 100, domain.FlagHasMint, domain.FlagHasBlacklist))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got < 0.55-1e-9 || got > 0.55+1e-9 {
		t.Errorf("two rules fired: got %v, want 0.55", got)
	}
}

func TestFromConfig(t *testing.T) {
	schema := features.TokenSchema()

	tests := []struct {
		name    string
		cfg     ScorerConfig
		wantErr error
	}{
		{
			name:    "unknown type",
			cfg:     ScorerConfig{ScorerType: "GRADIENT_BOOST"},
			wantErr: ErrUnknownScorerType,
		},
		{
			name:    "tree ensemble without trees",
			cfg:     ScorerConfig{ScorerType: ScorerTypeTreeEnsemble},
			wantErr: ErrMissingTrees,
		},
		{
			name:    "linear without weights",
			cfg:     ScorerConfig{ScorerType: ScorerTypeLinear},
			wantErr: ErrMissingWeights,
		},
		{
			name:    "rule based without rules",
			cfg:     ScorerConfig{ScorerType: ScorerTypeRuleBased},
			wantErr: ErrMissingRules,
		},
		{
			name: "valid tree ensemble",
			cfg:  DefaultTokenScorerConfig(),
		},
		{
			name: "valid rule based",
			cfg:  FallbackTokenScorerConfig(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer, err := FromConfig(schema, tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromConfig: %v", err)
			}
			if scorer.Schema() != schema {
				t.Error("scorer should carry the given schema")
			}
		})
	}
}
