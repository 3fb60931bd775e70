// Package idhash computes deterministic identifiers for pipeline records.
package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputeReportID computes a deterministic report_id.
// Formula: base58(SHA256(contract|deployer|risk_score|deployer_score|generated_at)[:16])
// Short, content-addressed, and stable across re-assembly of the same inputs.
func ComputeReportID(contract, deployer string, riskScore, deployerScore int, generatedAt int64) string {
	data := fmt.Sprintf("%s|%s|%d|%d|%d",
		contract,
		deployer,
		riskScore,
		deployerScore,
		generatedAt,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:16])
}
