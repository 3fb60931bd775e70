package classifier

import (
	"errors"
	"testing"
	"time"

	"rugwatch/internal/domain"
	"rugwatch/internal/features"
)

var testClock = func() time.Time {
	return time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
}

func TestCutoffs_Band(t *testing.T) {
	c := DefaultCutoffs()

	tests := []struct {
		score int
		want  domain.RiskLevel
	}{
		{0, domain.RiskLevelLow},
		{39, domain.RiskLevelLow},
		{40, domain.RiskLevelMedium},
		{69, domain.RiskLevelMedium},
		{70, domain.RiskLevelHigh},
		{100, domain.RiskLevelHigh},
	}
	for _, tt := range tests {
		if got := c.Band(tt.score); got != tt.want {
			t.Errorf("Band(%d): got %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestNewTokenClassifier_NilScorer(t *testing.T) {
	_, err := NewTokenClassifier(nil, DefaultCutoffs(), nil)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("got %v, want ErrModelUnavailable", err)
	}
}

func TestTokenClassifier_DefaultModel(t *testing.T) {
	scorer, err := FromConfig(features.TokenSchema(), DefaultTokenScorerConfig())
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	c, err := NewTokenClassifier(scorer, DefaultCutoffs(), testClock)
	if err != nil {
		t.Fatalf("NewTokenClassifier: %v", err)
	}

	tests := []struct {
		name      string
		vec       []float64
		wantScore int
		wantLevel domain.RiskLevel
		wantLabel domain.TokenLabel
	}{
		{
			name:      "clean large contract",
			vec:       tokenVec(t, 200),
			wantScore: 2,
			wantLevel: domain.RiskLevelLow,
			wantLabel: domain.TokenLabelSafe,
		},
		{
			name:      "fee setter only",
			vec:       tokenVec(t, 200, domain.FlagHasSetFee),
			wantScore: 17,
			wantLevel: domain.RiskLevelLow,
			wantLabel: domain.TokenLabelSafe,
		},
		{
			name:      "mint and blacklist",
			vec:       tokenVec(t, 200, domain.FlagHasMint, domain.FlagHasBlacklist),
			wantScore: 57,
			wantLevel: domain.RiskLevelMedium,
			wantLabel: domain.TokenLabelSuspicious,
		},
		{
			name: "rug toolkit",
			vec: tokenVec(t, 200,
				domain.FlagHasMint,
				domain.FlagHasBlacklist,
				domain.FlagHasTradingLock,
			),
			wantScore: 82,
			wantLevel: domain.RiskLevelHigh,
			wantLabel: domain.TokenLabelRugpull,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify("0xabc", tt.vec)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got.ContractAddress != "0xabc" {
				t.Errorf("address: got %s", got.ContractAddress)
			}
			if got.RiskScore != tt.wantScore {
				t.Errorf("score: got %d, want %d", got.RiskScore, tt.wantScore)
			}
			if got.RiskLevel != tt.wantLevel {
				t.Errorf("level: got %s, want %s", got.RiskLevel, tt.wantLevel)
			}
			if got.Label != tt.wantLabel {
				t.Errorf("label: got %s, want %s", got.Label, tt.wantLabel)
			}
			if got.AssessedAt != testClock().UnixMilli() {
				t.Errorf("assessed_at: got %d", got.AssessedAt)
			}
		})
	}
}

func TestTokenClassifier_MonotoneInFlags(t *testing.T) {
	scorer, err := FromConfig(features.TokenSchema(), DefaultTokenScorerConfig())
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	c, err := NewTokenClassifier(scorer, DefaultCutoffs(), testClock)
	if err != nil {
		t.Fatalf("NewTokenClassifier: %v", err)
	}

	// Adding flags one at a time never lowers the score.
	flags := []string{
		domain.FlagHasMaxTx,
		domain.FlagHasSetFee,
		domain.FlagHasBlacklist,
		domain.FlagHasTradingLock,
		domain.FlagHasMint,
	}
	prev := -1
	for i := 0; i <= len(flags); i++ {
		got, err := c.Classify("0xabc", tokenVec(t, 200, flags[:i]...))
		if err != nil {
			t.Fatalf("Classify with %d flags: %v", i, err)
		}
		if got.RiskScore < prev {
			t.Fatalf("score dropped from %d to %d at %d flags", prev, got.RiskScore, i)
		}
		prev = got.RiskScore
	}
}

func TestDeployerClassifier_DefaultModel(t *testing.T) {
	scorer, err := FromConfig(features.DeployerSchema(), DefaultDeployerScorerConfig())
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	c, err := NewDeployerClassifier(scorer, DefaultCutoffs(), testClock)
	if err != nil {
		t.Fatalf("NewDeployerClassifier: %v", err)
	}

	tests := []struct {
		name      string
		vec       []float64
		wantScore int
		wantClass domain.RiskLevel
		wantLabel domain.DeployerLabel
		wantN     int
	}{
		{
			name:      "no history",
			vec:       features.DeployerVector(0, 0, 0),
			wantScore: 0,
			wantClass: domain.RiskLevelLow,
			wantLabel: domain.DeployerLabelTrusted,
			wantN:     0,
		},
		{
			name:      "all safe",
			vec:       features.DeployerVector(5, 0, 0),
			wantScore: 0,
			wantClass: domain.RiskLevelLow,
			wantLabel: domain.DeployerLabelTrusted,
			wantN:     5,
		},
		{
			name:      "half suspicious",
			vec:       features.DeployerVector(2, 2, 0),
			wantScore: 20,
			wantClass: domain.RiskLevelLow,
			wantLabel: domain.DeployerLabelTrusted,
			wantN:     4,
		},
		{
			name:      "half rugpull",
			vec:       features.DeployerVector(2, 0, 2),
			wantScore: 50,
			wantClass: domain.RiskLevelMedium,
			wantLabel: domain.DeployerLabelWatchlist,
			wantN:     4,
		},
		{
			name:      "serial rugpuller",
			vec:       features.DeployerVector(1, 0, 4),
			wantScore: 80,
			wantClass: domain.RiskLevelHigh,
			wantLabel: domain.DeployerLabelHighRisk,
			wantN:     5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify("0xdep", tt.vec)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got.Deployer != "0xdep" {
				t.Errorf("deployer: got %s", got.Deployer)
			}
			if got.Score != tt.wantScore {
				t.Errorf("score: got %d, want %d", got.Score, tt.wantScore)
			}
			if got.RiskClass != tt.wantClass {
				t.Errorf("class: got %s, want %s", got.RiskClass, tt.wantClass)
			}
			if got.Label != tt.wantLabel {
				t.Errorf("label: got %s, want %s", got.Label, tt.wantLabel)
			}
			if got.NContracts != tt.wantN {
				t.Errorf("n_contracts: got %d, want %d", got.NContracts, tt.wantN)
			}
		})
	}
}

func TestFallbackConfigs_Load(t *testing.T) {
	if _, err := FromConfig(features.TokenSchema(), FallbackTokenScorerConfig()); err != nil {
		t.Errorf("token fallback: %v", err)
	}
	if _, err := FromConfig(features.DeployerSchema(), FallbackDeployerScorerConfig()); err != nil {
		t.Errorf("deployer fallback: %v", err)
	}
}
