package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// WPEntry is the weighted-product outcome for one alternative: S is the
// weighted product and V (the Score) its share of the total.
type WPEntry struct {
	ScoreEntry
	S float64 `json:"s"`
}

// WPResult is the complete weighted-product outcome.
type WPResult struct {
	Weights   WeightSet `json:"weights"`
	Exponents []float64 `json:"exponents"`
	Entries   []WPEntry `json:"entries"`
}

// Scores drops S, keeping the preference V as the score.
func (r *WPResult) Scores() ScoreResult {
	out := make(ScoreResult, len(r.Entries))
	for i := range r.Entries {
		out[i] = r.Entries[i].ScoreEntry
	}
	return out
}

// S returns the weighted products in input order.
func (r *WPResult) S() []float64 {
	out := make([]float64, len(r.Entries))
	for i := range r.Entries {
		out[i] = r.Entries[i].S
	}
	return out
}

// Exponents returns the signed WP exponents: +w for benefit, -w for cost.
func Exponents(criteria Criteria, weights WeightSet) []float64 {
	exp := make([]float64, len(criteria))
	for j, cr := range criteria {
		if cr.Direction == Cost {
			exp[j] = -weights[j]
		} else {
			exp[j] = weights[j]
		}
	}
	return exp
}

// WP ranks alternatives by weighted product over raw values:
//
//	S_i = prod_j x_ij ^ e_j,  V_i = S_i / sum_k S_k
//
// Bases that would make a power undefined or infinite are rejected before
// any computation. When every S_i is zero, every V_i is zero.
func WP(m *DecisionMatrix, weights WeightSet, tie TieMethod) (*WPResult, error) {
	if m == nil || m.Len() == 0 {
		return nil, ErrEmptyInput
	}
	w, err := weights.Normalize(m.Criteria)
	if err != nil {
		return nil, err
	}
	exp := Exponents(m.Criteria, w)

	for _, alt := range m.Alternatives {
		for j, x := range alt.Values {
			if err := checkPowerDomain(x, exp[j], m.Criteria[j].Direction); err != nil {
				return nil, fmt.Errorf("%w: alternative %q, criterion %s: %v",
					ErrInvalidInput, alt.Name, m.Criteria[j].ID, err)
			}
		}
	}

	s := make([]float64, m.Len())
	for i, alt := range m.Alternatives {
		prod := 1.0
		for j, x := range alt.Values {
			prod *= math.Pow(x, exp[j])
		}
		s[i] = prod
	}

	v := make([]float64, len(s))
	if total := floats.Sum(s); total != 0 {
		copy(v, s)
		floats.Scale(1/total, v)
	}

	res := &WPResult{Weights: w, Exponents: exp, Entries: make([]WPEntry, m.Len())}
	ranks := Rank(v, tie)
	for i, alt := range m.Alternatives {
		res.Entries[i] = WPEntry{
			ScoreEntry: ScoreEntry{Alternative: alt.Name, Score: v[i], Rank: ranks[i]},
			S:          s[i],
		}
	}
	return res, nil
}

// checkPowerDomain keeps every S_i finite and non-negative, so V stays in
// [0,1] and sum S == 0 only when every S_i is zero.
func checkPowerDomain(x, e float64, dir Direction) error {
	integral := e == math.Trunc(e)
	switch {
	case x < 0 && dir == Cost:
		return fmt.Errorf("negative cost value %g", x)
	case x == 0 && e < 0:
		return fmt.Errorf("zero base with negative exponent %g", e)
	case x <= 0 && !integral:
		return fmt.Errorf("non-positive base %g with fractional exponent %g", x, e)
	case x < 0 && e != 0:
		return fmt.Errorf("negative base %g with exponent %g", x, e)
	}
	return nil
}
