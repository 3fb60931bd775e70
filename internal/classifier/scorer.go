// Package classifier maps feature vectors to risk assessments. The
// scoring model sits behind the Scorer capability so that algorithms
// are a configuration decision: the pipeline only sees probabilities.
package classifier

import (
	"errors"
	"fmt"

	"rugwatch/internal/features"
)

// Classifier errors.
var (
	// ErrModelUnavailable means no scorer was configured or loaded.
	// Surfaced at construction time; a built classifier never returns it.
	ErrModelUnavailable = errors.New("classifier model unavailable")

	// ErrSchemaMismatch means a feature vector's length disagrees with
	// the scorer's expected schema. Non-retryable caller error.
	ErrSchemaMismatch = errors.New("feature vector does not match scorer schema")
)

// Scorer maps a feature vector to the probability of the malicious
// class. Implementations are deterministic and safe for concurrent use.
type Scorer interface {
	// Score returns P(malicious) in [0,1] for a vector in Schema order.
	// Returns ErrSchemaMismatch if the vector length is wrong.
	Score(vec []float64) (float64, error)

	// Schema returns the expected input schema.
	Schema() *features.Schema

	// ID returns the scorer identifier (includes model type).
	ID() string
}

// checkSchema validates vector length against a schema.
func checkSchema(schema *features.Schema, vec []float64) error {
	if !schema.Matches(len(vec)) {
		return fmt.Errorf("%w: schema %s expects %d fields, got %d",
			ErrSchemaMismatch, schema.Name(), schema.Len(), len(vec))
	}
	return nil
}

// clamp01 bounds a score into [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
