package domain

// DeployerLabel classifies a deployer account.
type DeployerLabel string

const (
	DeployerLabelTrusted   DeployerLabel = "trusted"
	DeployerLabelWatchlist DeployerLabel = "watchlist"
	DeployerLabelHighRisk  DeployerLabel = "high_risk"
)

// DeployerHistory is the ordered, append-only sequence of token
// assessments attributed to one deployer. Entries are never removed or
// edited; a reclassification appends a new entry.
type DeployerHistory struct {
	Deployer    string
	Assessments []*TokenAssessment // insertion order
}

// Len returns the number of recorded assessments.
func (h *DeployerHistory) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Assessments)
}

// DeployerFeatureVector is the fixed-length numeric input to the
// deployer classifier. Field order is defined by features.DeployerSchema.
// Fractions are recomputed from current counts and are 0 when the
// deployer has no history.
type DeployerFeatureVector []float64

// DeployerAssessment is the reputation result for one deployer.
// Recomputed whenever DeployerHistory changes; each recomputation is a
// new immutable record.
type DeployerAssessment struct {
	Deployer   string        // assessed deployer
	Score      int           // 0..100, higher means riskier
	RiskClass  RiskLevel     // thresholded band
	Label      DeployerLabel // derived from RiskClass
	NContracts int           // history length at assessment time
	AssessedAt int64         // Unix timestamp in milliseconds
}
