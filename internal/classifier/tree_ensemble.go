package classifier

import (
	"fmt"

	"rugwatch/internal/features"
)

// TreeNode is one node of a regression tree. Leaf nodes carry a Value;
// internal nodes split on Field < Threshold ? Left : Right.
type TreeNode struct {
	Field     string    `json:"field,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Value     float64   `json:"value,omitempty"`
}

// IsLeaf reports whether the node is a leaf.
func (n *TreeNode) IsLeaf() bool { return n.Left == nil && n.Right == nil }

// TreeEnsembleScorer sums the outputs of an additive regression-tree
// ensemble plus a base score, clamped to [0,1]. Trees with non-negative
// right-branch gains over risk-flag fields keep the mapping monotone in
// the flags.
type TreeEnsembleScorer struct {
	schema *features.Schema
	base   float64
	trees  []*TreeNode
}

// NewTreeEnsembleScorer builds an ensemble scorer. Every split field
// must exist in the schema; a tree referencing an unknown field is a
// configuration error.
func NewTreeEnsembleScorer(schema *features.Schema, base float64, trees []*TreeNode) (*TreeEnsembleScorer, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("tree ensemble: %w", ErrModelUnavailable)
	}
	for i, tree := range trees {
		if err := validateTree(schema, tree); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &TreeEnsembleScorer{schema: schema, base: base, trees: trees}, nil
}

// Score sums tree outputs over the vector.
func (s *TreeEnsembleScorer) Score(vec []float64) (float64, error) {
	if err := checkSchema(s.schema, vec); err != nil {
		return 0, err
	}

	sum := s.base
	for _, tree := range s.trees {
		sum += evalTree(s.schema, tree, vec)
	}
	return clamp01(sum), nil
}

// Schema returns the expected input schema.
func (s *TreeEnsembleScorer) Schema() *features.Schema { return s.schema }

// ID returns the scorer identifier.
func (s *TreeEnsembleScorer) ID() string {
	return fmt.Sprintf("TREE_ENSEMBLE(%s,n=%d)", s.schema.Name(), len(s.trees))
}

// evalTree walks one tree to its leaf for the given vector.
func evalTree(schema *features.Schema, node *TreeNode, vec []float64) float64 {
	for !node.IsLeaf() {
		if vec[schema.Index(node.Field)] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// validateTree checks that all split fields exist and internal nodes
// have both children.
func validateTree(schema *features.Schema, node *TreeNode) error {
	if node == nil {
		return fmt.Errorf("nil tree node")
	}
	if node.IsLeaf() {
		return nil
	}
	if node.Left == nil || node.Right == nil {
		return fmt.Errorf("split node on %q missing a child", node.Field)
	}
	if schema.Index(node.Field) < 0 {
		return fmt.Errorf("split field %q not in schema %s", node.Field, schema.Name())
	}
	if err := validateTree(schema, node.Left); err != nil {
		return err
	}
	return validateTree(schema, node.Right)
}

// Compile-time interface check.
var _ Scorer = (*TreeEnsembleScorer)(nil)
