package classifier

import (
	"fmt"
	"math"
	"time"

	"rugwatch/internal/domain"
	"rugwatch/internal/features"
)

// DeployerClassifier turns deployer feature vectors into reputation
// assessments. Same contract shape as the token classifier: swappable
// scorer, configurable cutoffs. Tolerates deployers with zero or one
// recorded contract; fractions in the vector are already defined as 0
// when the denominator is 0.
type DeployerClassifier struct {
	scorer  Scorer
	cutoffs Cutoffs
	clock   func() time.Time
}

// NewDeployerClassifier creates a deployer classifier.
func NewDeployerClassifier(scorer Scorer, cutoffs Cutoffs, clock func() time.Time) (*DeployerClassifier, error) {
	if scorer == nil {
		return nil, fmt.Errorf("deployer classifier: %w", ErrModelUnavailable)
	}
	if clock == nil {
		clock = time.Now
	}
	return &DeployerClassifier{scorer: scorer, cutoffs: cutoffs, clock: clock}, nil
}

// Classify scores a deployer vector and derives risk class and label.
func (c *DeployerClassifier) Classify(deployer string, vec domain.DeployerFeatureVector) (*domain.DeployerAssessment, error) {
	p, err := c.scorer.Score(vec)
	if err != nil {
		return nil, fmt.Errorf("classify deployer %s: %w", deployer, err)
	}

	score := int(math.Round(100 * p))
	class := c.cutoffs.Band(score)

	nContracts := 0
	if i := c.scorer.Schema().Index(features.FieldNContracts); i >= 0 && i < len(vec) {
		nContracts = int(vec[i])
	}

	return &domain.DeployerAssessment{
		Deployer:   deployer,
		Score:      score,
		RiskClass:  class,
		Label:      deployerLabelFor(class),
		NContracts: nContracts,
		AssessedAt: c.clock().UnixMilli(),
	}, nil
}

// ScorerID returns the underlying scorer identifier.
func (c *DeployerClassifier) ScorerID() string { return c.scorer.ID() }

// deployerLabelFor maps a risk band to the deployer label.
func deployerLabelFor(class domain.RiskLevel) domain.DeployerLabel {
	switch class {
	case domain.RiskLevelHigh:
		return domain.DeployerLabelHighRisk
	case domain.RiskLevelMedium:
		return domain.DeployerLabelWatchlist
	default:
		return domain.DeployerLabelTrusted
	}
}
