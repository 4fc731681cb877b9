package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// WeightSet holds one weight per criterion, in criterion order.
type WeightSet []float64

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	if len(w) == 0 {
		return 0
	}
	return floats.Sum(w)
}

// Validate checks shape against the criteria and requires every weight to be
// a finite value in [0,1].
func (w WeightSet) Validate(criteria Criteria) error {
	if len(w) != len(criteria) {
		return fmt.Errorf("%w: %d weights for %d criteria", ErrInvalidInput, len(w), len(criteria))
	}
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weight for %s is not a number", ErrInvalidInput, criteria[i].ID)
		}
		if v < 0 {
			return fmt.Errorf("%w: negative weight for %s: %f", ErrInvalidInput, criteria[i].ID, v)
		}
		if v > 1 {
			return fmt.Errorf("%w: weight for %s above 1: %f", ErrInvalidInput, criteria[i].ID, v)
		}
	}
	return nil
}

// Normalize divides every weight by the total so the result sums to 1.0.
// A zero total substitutes the registry's fixed fallback vector, then its
// default weights, then equal weights. The receiver is not modified.
func (w WeightSet) Normalize(criteria Criteria) (WeightSet, error) {
	if err := w.Validate(criteria); err != nil {
		return nil, err
	}
	total := w.Sum()
	if total == 0 {
		return fallbackWeights(criteria), nil
	}
	out := make(WeightSet, len(w))
	copy(out, w)
	floats.Scale(1/total, out)
	return out, nil
}

func fallbackWeights(criteria Criteria) WeightSet {
	for _, def := range []WeightSet{criteria.FallbackWeights(), criteria.DefaultWeights()} {
		if total := def.Sum(); total > 0 && def.Validate(criteria) == nil {
			floats.Scale(1/total, def)
			return def
		}
	}
	out := make(WeightSet, len(criteria))
	for i := range out {
		out[i] = 1 / float64(len(criteria))
	}
	return out
}
