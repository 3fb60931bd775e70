package features

import "rugwatch/internal/domain"

// DeployerVector builds a deployer feature vector from per-label
// counts, in DeployerSchema order. Fractions are defined as 0 when the
// deployer has no history, so a brand-new deployer yields an all-zero
// vector rather than NaNs.
func DeployerVector(nSafe, nSuspicious, nRugpull int) domain.DeployerFeatureVector {
	schema := DeployerSchema()
	total := nSafe + nSuspicious + nRugpull

	vec := make(domain.DeployerFeatureVector, schema.Len())
	vec[schema.Index(FieldNContracts)] = float64(total)
	vec[schema.Index(FieldNSafe)] = float64(nSafe)
	vec[schema.Index(FieldNSuspicious)] = float64(nSuspicious)
	vec[schema.Index(FieldNRugpull)] = float64(nRugpull)

	if total > 0 {
		vec[schema.Index(FieldFracSafe)] = float64(nSafe) / float64(total)
		vec[schema.Index(FieldFracSuspicious)] = float64(nSuspicious) / float64(total)
		vec[schema.Index(FieldFracRugpull)] = float64(nRugpull) / float64(total)
	}

	return vec
}
