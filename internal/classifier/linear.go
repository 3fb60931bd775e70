package classifier

import (
	"fmt"

	"rugwatch/internal/features"
)

// LinearScorer computes a clamped weighted sum over named fields.
// The gradient-boosting stand-in: cheap, inspectable, and monotone
// wherever its weights are non-negative.
type LinearScorer struct {
	schema  *features.Schema
	bias    float64
	weights []float64 // positional, schema order
}

// NewLinearScorer builds a linear scorer from per-field weights.
// Fields absent from the map get weight 0; a weight for an unknown
// field is a configuration error.
func NewLinearScorer(schema *features.Schema, bias float64, weights map[string]float64) (*LinearScorer, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("linear scorer: %w", ErrModelUnavailable)
	}

	positional := make([]float64, schema.Len())
	for field, w := range weights {
		i := schema.Index(field)
		if i < 0 {
			return nil, fmt.Errorf("linear scorer: weight for unknown field %q in schema %s", field, schema.Name())
		}
		positional[i] = w
	}

	return &LinearScorer{schema: schema, bias: bias, weights: positional}, nil
}

// Score returns clamp01(bias + w·vec).
func (s *LinearScorer) Score(vec []float64) (float64, error) {
	if err := checkSchema(s.schema, vec); err != nil {
		return 0, err
	}

	sum := s.bias
	for i, w := range s.weights {
		sum += w * vec[i]
	}
	return clamp01(sum), nil
}

// Schema returns the expected input schema.
func (s *LinearScorer) Schema() *features.Schema { return s.schema }

// ID returns the scorer identifier.
func (s *LinearScorer) ID() string {
	return fmt.Sprintf("LINEAR(%s)", s.schema.Name())
}

// Compile-time interface check.
var _ Scorer = (*LinearScorer)(nil)
