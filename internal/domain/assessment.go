package domain

// RiskLevel is the thresholded per-contract risk band.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"
)

// TokenLabel classifies a single contract.
type TokenLabel string

const (
	TokenLabelSafe       TokenLabel = "safe"
	TokenLabelSuspicious TokenLabel = "suspicious"
	TokenLabelRugpull    TokenLabel = "rugpull_candidate"
)

// TokenLabels lists all token labels in canonical order.
var TokenLabels = []TokenLabel{TokenLabelSafe, TokenLabelSuspicious, TokenLabelRugpull}

// TokenAssessment is the classification result for one contract.
// Produced once per ContractRecord; immutable.
// Corresponds to the token_assessments table in PostgreSQL.
type TokenAssessment struct {
	ContractAddress string     // assessed contract
	RiskScore       int        // 0..100, round(100 * P(malicious))
	RiskLevel       RiskLevel  // thresholded band
	Label           TokenLabel // derived from RiskLevel
	AssessedAt      int64      // Unix timestamp in milliseconds
}

// TokenFeatureVector is the fixed-length numeric input to the token
// classifier. Field order is defined by features.TokenSchema and is
// identical across all invocations.
type TokenFeatureVector []float64
