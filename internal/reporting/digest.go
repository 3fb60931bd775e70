// Package reporting produces operator-facing digests from stored assessments.
package reporting

import (
	"context"
	"sort"
	"time"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// Digest summarizes stored token and deployer assessments.
type Digest struct {
	GeneratedAt time.Time

	Summary DigestSummary

	// LabelDistribution is sorted by label name.
	LabelDistribution []LabelCountRow

	// TopDeployers is sorted by score descending, riskiest first.
	TopDeployers []DeployerRow

	// HighRiskTokens is sorted by assessed_at descending.
	HighRiskTokens []TokenRow
}

// DigestSummary contains aggregate counts.
type DigestSummary struct {
	TotalAssessed  int
	TotalDeployers int
	HighRiskTokens int
}

// LabelCountRow is one row of the label distribution table.
type LabelCountRow struct {
	Label domain.TokenLabel
	Count int
}

// DeployerRow is one row of the deployer reputation table.
type DeployerRow struct {
	Deployer   string
	Score      int
	RiskClass  domain.RiskLevel
	Label      domain.DeployerLabel
	NContracts int
}

// TokenRow is one row of the high-risk token table.
type TokenRow struct {
	ContractAddress string
	RiskScore       int
	RiskLevel       domain.RiskLevel
	Label           domain.TokenLabel
	AssessedAt      int64
}

// Generator produces digests from stored data.
type Generator struct {
	tokenStore    storage.TokenAssessmentStore
	deployerStore storage.DeployerAssessmentStore
	topN          int
	now           func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new digest generator.
func NewGenerator(tokenStore storage.TokenAssessmentStore, deployerStore storage.DeployerAssessmentStore) *Generator {
	return &Generator{
		tokenStore:    tokenStore,
		deployerStore: deployerStore,
		topN:          20,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithTopN limits the deployer and high-risk token tables.
func (g *Generator) WithTopN(n int) *Generator {
	if n > 0 {
		g.topN = n
	}
	return g
}

// Generate produces a complete digest.
func (g *Generator) Generate(ctx context.Context) (*Digest, error) {
	assessments, err := g.tokenStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	deployers, err := g.deployerStore.ListLatest(ctx)
	if err != nil {
		return nil, err
	}

	labels := generateLabelDistribution(assessments)
	highRisk := generateHighRiskTokens(assessments, g.topN)
	topDeployers := generateTopDeployers(deployers, g.topN)

	highRiskTotal := 0
	for _, a := range assessments {
		if a.RiskLevel == domain.RiskLevelHigh {
			highRiskTotal++
		}
	}

	return &Digest{
		GeneratedAt: g.now(),
		Summary: DigestSummary{
			TotalAssessed:  len(assessments),
			TotalDeployers: len(deployers),
			HighRiskTokens: highRiskTotal,
		},
		LabelDistribution: labels,
		TopDeployers:      topDeployers,
		HighRiskTokens:    highRisk,
	}, nil
}

func generateLabelDistribution(assessments []*domain.TokenAssessment) []LabelCountRow {
	counts := make(map[domain.TokenLabel]int)
	for _, a := range assessments {
		counts[a.Label]++
	}

	rows := make([]LabelCountRow, 0, len(counts))
	for label, count := range counts {
		rows = append(rows, LabelCountRow{Label: label, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Label < rows[j].Label
	})
	return rows
}

func generateTopDeployers(deployers []*domain.DeployerAssessment, topN int) []DeployerRow {
	rows := make([]DeployerRow, 0, len(deployers))
	for _, d := range deployers {
		rows = append(rows, DeployerRow{
			Deployer:   d.Deployer,
			Score:      d.Score,
			RiskClass:  d.RiskClass,
			Label:      d.Label,
			NContracts: d.NContracts,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Deployer < rows[j].Deployer
	})
	if len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}

func generateHighRiskTokens(assessments []*domain.TokenAssessment, topN int) []TokenRow {
	var rows []TokenRow
	for _, a := range assessments {
		if a.RiskLevel != domain.RiskLevelHigh {
			continue
		}
		rows = append(rows, TokenRow{
			ContractAddress: a.ContractAddress,
			RiskScore:       a.RiskScore,
			RiskLevel:       a.RiskLevel,
			Label:           a.Label,
			AssessedAt:      a.AssessedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AssessedAt != rows[j].AssessedAt {
			return rows[i].AssessedAt > rows[j].AssessedAt
		}
		return rows[i].ContractAddress < rows[j].ContractAddress
	})
	if len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}
