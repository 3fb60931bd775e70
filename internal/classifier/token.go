package classifier

import (
	"fmt"
	"math"
	"time"

	"rugwatch/internal/domain"
)

// Cutoffs thresholds a 0..100 score into the three risk bands.
// score >= High → High, score >= Medium → Medium, else Low.
// Configuration, not hardwired logic: tunable without retraining.
type Cutoffs struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
}

// DefaultCutoffs returns the pinned default bands.
func DefaultCutoffs() Cutoffs {
	return Cutoffs{High: 70, Medium: 40}
}

// Band maps a score to its risk band.
func (c Cutoffs) Band(score int) domain.RiskLevel {
	switch {
	case score >= c.High:
		return domain.RiskLevelHigh
	case score >= c.Medium:
		return domain.RiskLevelMedium
	default:
		return domain.RiskLevelLow
	}
}

// TokenClassifier turns token feature vectors into assessments.
// The scorer is swappable; the score→level→label mapping is monotonic
// and piecewise-defined by the cutoffs.
type TokenClassifier struct {
	scorer  Scorer
	cutoffs Cutoffs
	clock   func() time.Time
}

// NewTokenClassifier creates a token classifier. A nil scorer is
// ErrModelUnavailable: the pipeline must not start without a model.
func NewTokenClassifier(scorer Scorer, cutoffs Cutoffs, clock func() time.Time) (*TokenClassifier, error) {
	if scorer == nil {
		return nil, fmt.Errorf("token classifier: %w", ErrModelUnavailable)
	}
	if clock == nil {
		clock = time.Now
	}
	return &TokenClassifier{scorer: scorer, cutoffs: cutoffs, clock: clock}, nil
}

// Classify scores a vector and derives level and label.
// Never fails on well-formed input; ErrSchemaMismatch on wrong shape.
func (c *TokenClassifier) Classify(contractAddress string, vec domain.TokenFeatureVector) (*domain.TokenAssessment, error) {
	p, err := c.scorer.Score(vec)
	if err != nil {
		return nil, fmt.Errorf("classify contract %s: %w", contractAddress, err)
	}

	score := int(math.Round(100 * p))
	level := c.cutoffs.Band(score)

	return &domain.TokenAssessment{
		ContractAddress: contractAddress,
		RiskScore:       score,
		RiskLevel:       level,
		Label:           tokenLabelFor(level),
		AssessedAt:      c.clock().UnixMilli(),
	}, nil
}

// ScorerID returns the underlying scorer identifier.
func (c *TokenClassifier) ScorerID() string { return c.scorer.ID() }

// tokenLabelFor maps a risk band to the token label.
func tokenLabelFor(level domain.RiskLevel) domain.TokenLabel {
	switch level {
	case domain.RiskLevelHigh:
		return domain.TokenLabelRugpull
	case domain.RiskLevelMedium:
		return domain.TokenLabelSuspicious
	default:
		return domain.TokenLabelSafe
	}
}
