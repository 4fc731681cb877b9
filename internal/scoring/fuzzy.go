package scoring

import "math"

// TFNSpread is the half-width of the triangular fuzzy number built around a
// normalized value.
const TFNSpread = 0.1

// TFN is a triangular fuzzy number (A, M, B) with A <= M <= B.
type TFN struct {
	A float64 `json:"a"`
	M float64 `json:"m"`
	B float64 `json:"b"`
}

// Triangular builds the TFN of a normalized value, clipped to [0,1].
// NaN maps to the zero TFN.
func Triangular(v float64) TFN {
	if math.IsNaN(v) {
		return TFN{}
	}
	return TFN{
		A: math.Max(0, v-TFNSpread),
		M: v,
		B: math.Min(1, v+TFNSpread),
	}
}

// Scale multiplies every component by w.
func (t TFN) Scale(w float64) TFN {
	return TFN{A: t.A * w, M: t.M * w, B: t.B * w}
}

// Add sums component-wise.
func (t TFN) Add(o TFN) TFN {
	return TFN{A: t.A + o.A, M: t.M + o.M, B: t.B + o.B}
}

// Centroid defuzzifies to the mean of the three components.
func (t TFN) Centroid() float64 {
	return (t.A + t.M + t.B) / 3
}

// FuzzyScore aggregates the weighted TFNs of one normalized row and returns
// the defuzzified score with the aggregate.
//
// A NaN entry contributes (0,0,0), which can understate the alternative.
func FuzzyScore(row []float64, weights WeightSet) (float64, TFN) {
	var total TFN
	for j, r := range row {
		total = total.Add(Triangular(r).Scale(weights[j]))
	}
	return total.Centroid(), total
}
