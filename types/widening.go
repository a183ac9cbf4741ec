package types

// Distance returns the number of widening steps needed to use a value of type
// actual where declared is expected. Equal types have distance 0. When no
// widening path exists the result is ImpossibleWidening.
func Distance(actual, declared ExprType) int {
	if actual == declared {
		return 0
	}
	// Breadth-first walk from the declared type down its widening sources.
	seen := map[ExprType]bool{declared: true}
	frontier := []ExprType{declared}
	for steps := 1; len(frontier) > 0; steps++ {
		var next []ExprType
		for _, t := range frontier {
			for _, src := range widensFrom[t] {
				if src == actual {
					return steps
				}
				if !seen[src] {
					seen[src] = true
					next = append(next, src)
				}
			}
		}
		frontier = next
	}
	return ImpossibleWidening
}

// CanWiden reports whether actual can be used where declared is expected
func CanWiden(actual, declared ExprType) bool {
	return Distance(actual, declared) != ImpossibleWidening
}

// SignatureDistance sums the per-argument distances of actual against
// declared. Mismatched arity or any impossible argument yields
// ImpossibleWidening.
func SignatureDistance(actual, declared []ExprType) int {
	if len(actual) != len(declared) {
		return ImpossibleWidening
	}
	total := 0
	for i := range actual {
		d := Distance(actual[i], declared[i])
		if d == ImpossibleWidening {
			return ImpossibleWidening
		}
		total += d
	}
	return total
}

// CommonType returns the narrowest type both a and b widen into, preferring
// the type reachable with the fewest combined steps.
func CommonType(a, b ExprType) (ExprType, bool) {
	if a == b {
		return a, true
	}
	best, bestCost := Undefined, ImpossibleWidening
	for _, t := range All() {
		da, db := Distance(a, t), Distance(b, t)
		if da == ImpossibleWidening || db == ImpossibleWidening {
			continue
		}
		if cost := da + db; cost < bestCost {
			best, bestCost = t, cost
		}
	}
	return best, bestCost != ImpossibleWidening
}
