package scoring

// ComputeFrontier returns the names of the Pareto-optimal alternatives, in
// input order. An alternative is dominated if another one is at least as
// good on every criterion (lower for cost, higher for benefit) and strictly
// better on at least one. O(n^2) dominance check, fine for typical matrix sizes.
func ComputeFrontier(m *DecisionMatrix) []string {
	if m == nil {
		return nil
	}
	var frontier []string
	for i := range m.Alternatives {
		dominated := false
		for j := range m.Alternatives {
			if i == j {
				continue
			}
			if dominates(m.Criteria, m.Alternatives[j].Values, m.Alternatives[i].Values) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, m.Alternatives[i].Name)
		}
	}
	return frontier
}

// dominates returns true if a dominates b.
func dominates(criteria Criteria, a, b []float64) bool {
	strictly := false
	for j, cr := range criteria {
		x, y := a[j], b[j]
		if cr.Direction == Cost {
			x, y = -x, -y
		}
		if x < y {
			return false
		}
		if x > y {
			strictly = true
		}
	}
	return strictly
}
