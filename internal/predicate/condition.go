// Package predicate implements the predicate condition tree, its
// evaluation against a metadata map, and the reverse-index structures
// that let the store generate scan candidates instead of a full scan.
package predicate

import (
	"fmt"

	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// Op names a predicate leaf's comparison kind.
type Op int

const (
	// OpEquals matches when metadata[Key] == Value.
	OpEquals Op = iota
	// OpNotEquals matches when metadata[Key] != Value (including absent).
	OpNotEquals
	// OpIn matches when metadata[Key] is one of Values.
	OpIn
	// OpNotIn matches when metadata[Key] is none of Values (including absent).
	OpNotIn
)

// Combinator names an internal node's boolean combinator.
type Combinator int

const (
	// CombAnd requires both children to match, short-circuiting on the
	// first false child.
	CombAnd Combinator = iota
	// CombOr requires either child to match, short-circuiting on the
	// first true child.
	CombOr
)

// Condition is a node in a predicate tree: either a leaf comparing one
// metadata key, or an internal And/Or node combining two sub-trees.
// Exactly one of (Op-based leaf fields) or (Combinator, Left, Right) is
// populated, selected by IsLeaf.
type Condition struct {
	IsLeaf bool

	// Leaf fields.
	LeafOp Op
	Key    string
	Value  valuetype.MetadataValue   // used by OpEquals/OpNotEquals
	Values []valuetype.MetadataValue // used by OpIn/OpNotIn

	// Internal node fields.
	Combinator Combinator
	Left       *Condition
	Right      *Condition
}

// Equals builds an Equals leaf.
func Equals(key string, value valuetype.MetadataValue) *Condition {
	return &Condition{IsLeaf: true, LeafOp: OpEquals, Key: key, Value: value}
}

// NotEquals builds a NotEquals leaf.
func NotEquals(key string, value valuetype.MetadataValue) *Condition {
	return &Condition{IsLeaf: true, LeafOp: OpNotEquals, Key: key, Value: value}
}

// In builds an In leaf.
func In(key string, values []valuetype.MetadataValue) *Condition {
	return &Condition{IsLeaf: true, LeafOp: OpIn, Key: key, Values: values}
}

// NotIn builds a NotIn leaf.
func NotIn(key string, values []valuetype.MetadataValue) *Condition {
	return &Condition{IsLeaf: true, LeafOp: OpNotIn, Key: key, Values: values}
}

// And combines two conditions, short-circuiting on the first false.
func And(left, right *Condition) *Condition {
	return &Condition{Combinator: CombAnd, Left: left, Right: right}
}

// Or combines two conditions, short-circuiting on the first true.
func Or(left, right *Condition) *Condition {
	return &Condition{Combinator: CombOr, Left: left, Right: right}
}

// Validate rejects malformed trees: nil branches on an internal node,
// or an In/NotIn leaf with no values. This is the InvalidQuery check
// performed at parse time, before evaluation ever runs.
func (c *Condition) Validate() error {
	if c == nil {
		return fmt.Errorf("predicate condition is nil")
	}
	if c.IsLeaf {
		if c.Key == "" {
			return fmt.Errorf("predicate leaf has empty key")
		}
		if (c.LeafOp == OpIn || c.LeafOp == OpNotIn) && len(c.Values) == 0 {
			return fmt.Errorf("predicate leaf %q requires at least one value", c.Key)
		}
		return nil
	}
	if c.Left == nil || c.Right == nil {
		return fmt.Errorf("predicate combinator has a nil branch")
	}
	if err := c.Left.Validate(); err != nil {
		return err
	}
	return c.Right.Validate()
}

// Evaluate runs the condition against one entry's metadata, with the
// "absent key" convention: Equals/In are false for an absent key,
// NotEquals/NotIn are true. And/Or short-circuit per the evaluation
// contract.
func Evaluate(c *Condition, meta valuetype.MetadataMap) bool {
	if c == nil {
		return false
	}
	if c.IsLeaf {
		v, present := meta[c.Key]
		switch c.LeafOp {
		case OpEquals:
			return present && v.Equal(c.Value)
		case OpNotEquals:
			return !present || !v.Equal(c.Value)
		case OpIn:
			return present && containsValue(c.Values, v)
		case OpNotIn:
			return !present || !containsValue(c.Values, v)
		default:
			return false
		}
	}

	switch c.Combinator {
	case CombAnd:
		if !Evaluate(c.Left, meta) {
			return false // short-circuit
		}
		return Evaluate(c.Right, meta)
	case CombOr:
		if Evaluate(c.Left, meta) {
			return true // short-circuit
		}
		return Evaluate(c.Right, meta)
	default:
		return false
	}
}

func containsValue(values []valuetype.MetadataValue, v valuetype.MetadataValue) bool {
	for _, candidate := range values {
		if candidate.Equal(v) {
			return true
		}
	}
	return false
}
