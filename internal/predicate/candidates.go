package predicate

// CandidateSet inspects a condition tree for clauses whose key has a
// registered reverse index and narrows the scan to a safe superset of
// matching entries. Leaves with no index contribute the full universe
// (no narrowing possible for that branch). The result is always a
// superset of the exact answer; callers must still apply Evaluate over
// the returned set to get exact results — CandidateSet only bounds the
// scan, it never replaces evaluation.
func CandidateSet(c *Condition, indices map[string]*ReverseIndex, universe IDSet) IDSet {
	if c == nil {
		return IDSet{}
	}
	if c.IsLeaf {
		idx, ok := indices[c.Key]
		if !ok {
			return universe
		}
		switch c.LeafOp {
		case OpEquals:
			return idx.Lookup(c.Value)
		case OpNotEquals:
			return Difference(universe, idx.Lookup(c.Value))
		case OpIn:
			return idx.LookupAny(c.Values)
		case OpNotIn:
			return Difference(universe, idx.LookupAny(c.Values))
		default:
			return universe
		}
	}

	left := CandidateSet(c.Left, indices, universe)
	right := CandidateSet(c.Right, indices, universe)
	switch c.Combinator {
	case CombAnd:
		return Intersect(left, right)
	case CombOr:
		return Union(left, right)
	default:
		return universe
	}
}
