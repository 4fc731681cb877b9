package scoring

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// NormalizationMethod selects how raw columns are scaled to [0,1].
type NormalizationMethod string

const (
	// ExtremeRatio divides by the column extreme: benefit x/max, cost min/x.
	ExtremeRatio NormalizationMethod = "extreme_ratio"
	// MinMax rescales between the column extremes.
	MinMax NormalizationMethod = "min_max"
)

// ParseNormalizationMethod accepts the config/API spelling of a method.
func ParseNormalizationMethod(s string) (NormalizationMethod, error) {
	switch NormalizationMethod(s) {
	case ExtremeRatio, MinMax:
		return NormalizationMethod(s), nil
	}
	return "", fmt.Errorf("%w: unknown normalization %q", ErrInvalidInput, s)
}

// NormalizedMatrix has the shape of its DecisionMatrix with every entry in [0,1].
type NormalizedMatrix struct {
	Method       NormalizationMethod `json:"method"`
	Criteria     Criteria            `json:"criteria"`
	Alternatives []string            `json:"alternatives"`
	Values       [][]float64         `json:"values"`
}

// Row returns the normalized values of the named alternative.
func (n *NormalizedMatrix) Row(name string) ([]float64, bool) {
	for i, alt := range n.Alternatives {
		if alt == name {
			return n.Values[i], true
		}
	}
	return nil, false
}

// Normalize scales every column of m with the given method. A constant
// column normalizes to exactly 1.0 under either method.
func Normalize(m *DecisionMatrix, method NormalizationMethod) (*NormalizedMatrix, error) {
	if m == nil || m.Len() == 0 {
		return nil, ErrEmptyInput
	}
	out := &NormalizedMatrix{
		Method:       method,
		Criteria:     m.Criteria,
		Alternatives: m.Names(),
		Values:       make([][]float64, m.Len()),
	}
	for i := range out.Values {
		out.Values[i] = make([]float64, len(m.Criteria))
	}

	for j, cr := range m.Criteria {
		col := m.Column(j)
		var (
			scaled []float64
			err    error
		)
		switch method {
		case ExtremeRatio:
			scaled, err = extremeRatio(col, cr)
		case MinMax:
			scaled = minMax(col, cr.Direction)
		default:
			return nil, fmt.Errorf("%w: unknown normalization %q", ErrInvalidInput, method)
		}
		if err != nil {
			return nil, err
		}
		for i, v := range scaled {
			out.Values[i][j] = v
		}
	}
	return out, nil
}

func extremeRatio(col []float64, cr Criterion) ([]float64, error) {
	lo, hi := floats.Min(col), floats.Max(col)
	out := make([]float64, len(col))

	switch cr.Direction {
	case Cost:
		if lo <= 0 {
			return nil, fmt.Errorf("%w: cost criterion %s needs positive values for extreme-ratio normalization, got %g",
				ErrInvalidInput, cr.ID, lo)
		}
	case Benefit:
		if lo < 0 {
			return nil, fmt.Errorf("%w: benefit criterion %s needs non-negative values for extreme-ratio normalization, got %g",
				ErrInvalidInput, cr.ID, lo)
		}
	}

	if hi == lo {
		fill(out, 1.0)
		return out, nil
	}
	for i, x := range col {
		if cr.Direction == Cost {
			out[i] = lo / x
		} else {
			out[i] = x / hi
		}
	}
	return out, nil
}

func minMax(col []float64, dir Direction) []float64 {
	lo, hi := floats.Min(col), floats.Max(col)
	out := make([]float64, len(col))
	if hi == lo {
		fill(out, 1.0)
		return out
	}
	span := hi - lo
	for i, x := range col {
		if dir == Cost {
			out[i] = (hi - x) / span
		} else {
			out[i] = (x - lo) / span
		}
	}
	return out
}

func fill(s []float64, v float64) {
	for i := range s {
		s[i] = v
	}
}
