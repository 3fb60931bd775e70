package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the high-risk token table as a CSV string.
func RenderCSV(rows []TokenRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("contract_address,risk_score,risk_level,label,assessed_at\n")

	// Rows
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s,%d\n",
			r.ContractAddress,
			r.RiskScore,
			r.RiskLevel,
			r.Label,
			r.AssessedAt,
		))
	}

	return sb.String()
}

// RenderDeployerCSV renders the deployer reputation table as a CSV string.
func RenderDeployerCSV(rows []DeployerRow) string {
	var sb strings.Builder

	sb.WriteString("deployer,score,risk_class,label,n_contracts\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s,%d\n",
			r.Deployer,
			r.Score,
			r.RiskClass,
			r.Label,
			r.NContracts,
		))
	}

	return sb.String()
}
