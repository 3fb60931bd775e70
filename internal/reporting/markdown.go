package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the digest as a Markdown string.
func RenderMarkdown(d *Digest) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Risk Digest\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", d.GeneratedAt.Format(time.RFC3339)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Assessed Tokens | %d |\n", d.Summary.TotalAssessed))
	sb.WriteString(fmt.Sprintf("| Known Deployers | %d |\n", d.Summary.TotalDeployers))
	sb.WriteString(fmt.Sprintf("| High-Risk Tokens | %d |\n", d.Summary.HighRiskTokens))
	sb.WriteString("\n")

	// Label Distribution
	sb.WriteString("## Label Distribution\n\n")
	if len(d.LabelDistribution) > 0 {
		sb.WriteString("| Label | Count |\n")
		sb.WriteString("|-------|-------|\n")
		for _, row := range d.LabelDistribution {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", row.Label, row.Count))
		}
	} else {
		sb.WriteString("No assessments available.\n")
	}
	sb.WriteString("\n")

	// Top Deployers
	sb.WriteString("## Riskiest Deployers\n\n")
	if len(d.TopDeployers) > 0 {
		sb.WriteString("| Deployer | Score | Risk Class | Label | Contracts |\n")
		sb.WriteString("|----------|-------|------------|-------|----------|\n")
		for _, row := range d.TopDeployers {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %d |\n",
				row.Deployer, row.Score, row.RiskClass, row.Label, row.NContracts))
		}
	} else {
		sb.WriteString("No deployer assessments available.\n")
	}
	sb.WriteString("\n")

	// High-Risk Tokens
	sb.WriteString("## Recent High-Risk Tokens\n\n")
	if len(d.HighRiskTokens) > 0 {
		sb.WriteString("| Contract | Score | Level | Label | Assessed At (ms) |\n")
		sb.WriteString("|----------|-------|-------|-------|------------------|\n")
		for _, row := range d.HighRiskTokens {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %d |\n",
				row.ContractAddress, row.RiskScore, row.RiskLevel, row.Label, row.AssessedAt))
		}
	} else {
		sb.WriteString("No high-risk tokens recorded.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
