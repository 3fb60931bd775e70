package domain

import "encoding/json"

// Report is the terminal output for one processed contract: the token
// assessment merged with the deployer reputation. Immutable once emitted.
type Report struct {
	ReportID    string
	Contract    string
	Deployer    string
	Token       *TokenAssessment
	Reputation  *DeployerAssessment
	GeneratedAt int64 // Unix timestamp in milliseconds
}

// reportJSON is the wire shape consumed by downstream sinks.
type reportJSON struct {
	ReportID    string         `json:"report_id"`
	Contract    string         `json:"contract"`
	Deployer    string         `json:"deployer"`
	TokenRisk   tokenRiskJSON  `json:"token_risk"`
	Reputation  reputationJSON `json:"deployer_reputation"`
	GeneratedAt int64          `json:"generated_at"`
}

type tokenRiskJSON struct {
	Score int    `json:"score"`
	Level string `json:"level"`
	Label string `json:"label"`
}

type reputationJSON struct {
	Score     int    `json:"score"`
	RiskClass string `json:"risk_class"`
	Label     string `json:"label"`
}

// MarshalJSON renders the fixed wire shape. The token_risk and
// deployer_reputation objects match the downstream contract exactly.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		ReportID: r.ReportID,
		Contract: r.Contract,
		Deployer: r.Deployer,
		TokenRisk: tokenRiskJSON{
			Score: r.Token.RiskScore,
			Level: string(r.Token.RiskLevel),
			Label: string(r.Token.Label),
		},
		Reputation: reputationJSON{
			Score:     r.Reputation.Score,
			RiskClass: string(r.Reputation.RiskClass),
			Label:     string(r.Reputation.Label),
		},
		GeneratedAt: r.GeneratedAt,
	})
}

// UnmarshalJSON restores a Report from its wire shape.
func (r *Report) UnmarshalJSON(data []byte) error {
	var w reportJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.ReportID = w.ReportID
	r.Contract = w.Contract
	r.Deployer = w.Deployer
	r.Token = &TokenAssessment{
		ContractAddress: w.Contract,
		RiskScore:       w.TokenRisk.Score,
		RiskLevel:       RiskLevel(w.TokenRisk.Level),
		Label:           TokenLabel(w.TokenRisk.Label),
	}
	r.Reputation = &DeployerAssessment{
		Deployer:  w.Deployer,
		Score:     w.Reputation.Score,
		RiskClass: RiskLevel(w.Reputation.RiskClass),
		Label:     DeployerLabel(w.Reputation.Label),
	}
	r.GeneratedAt = w.GeneratedAt
	return nil
}
