// Package crisp maps raw measurements (monthly price, 0-100 scores) onto a
// small ordinal favourability scale before ranking.
package crisp

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

// Re-exported so callers can errors.Is without importing scoring.
var (
	ErrUnknownCriterion = scoring.ErrUnknownCriterion
	ErrInvalidInput     = scoring.ErrInvalidInput
)

// Scale is the ordinal level set. One scale is used for a whole run.
type Scale string

const (
	// Scale100 yields 40, 60, 80, 100.
	Scale100 Scale = "100"
	// Scale4 yields 1, 2, 3, 4.
	Scale4 Scale = "4"
)

// ParseScale accepts the config/API spelling of a scale.
func ParseScale(s string) (Scale, error) {
	switch Scale(s) {
	case "":
		return Scale100, nil
	case Scale100, Scale4:
		return Scale(s), nil
	}
	return "", fmt.Errorf("%w: unknown crisp scale %q", ErrInvalidInput, s)
}

// Levels lists the scale's values from least to most favourable.
func (s Scale) Levels() []float64 {
	if s == Scale4 {
		return []float64{1, 2, 3, 4}
	}
	return []float64{40, 60, 80, 100}
}

// Bucket is one threshold step. For cost tables a raw value matches when
// raw <= Bound; for benefit tables when raw >= Bound.
type Bucket struct {
	Bound float64
	Level int // index into Scale.Levels, 3 = most favourable
}

// Table is the ordered bucket list for one criterion, most favourable
// first. Values matching no bucket fall to level 0.
type Table struct {
	Direction scoring.Direction
	Buckets   []Bucket
}

// DefaultTables returns the threshold tables for the default criteria:
// C1 is a monthly price in dollars, C2-C4 are 0-100 scores.
func DefaultTables() map[string]Table {
	benefit := Table{
		Direction: scoring.Benefit,
		Buckets: []Bucket{
			{Bound: 90, Level: 3},
			{Bound: 80, Level: 2},
			{Bound: 60, Level: 1},
		},
	}
	return map[string]Table{
		"C1": {
			Direction: scoring.Cost,
			Buckets: []Bucket{
				{Bound: 50, Level: 3},
				{Bound: 100, Level: 2},
				{Bound: 150, Level: 1},
			},
		},
		"C2": benefit,
		"C3": benefit,
		"C4": benefit,
	}
}

// Converter converts raw values with a fixed scale.
type Converter struct {
	criteria scoring.Criteria
	tables   map[string]Table
	scale    Scale
}

// NewConverter creates a Converter over the given criteria and tables.
func NewConverter(criteria scoring.Criteria, tables map[string]Table, scale Scale) *Converter {
	if scale == "" {
		scale = Scale100
	}
	return &Converter{criteria: criteria, tables: tables, scale: scale}
}

// NewDefaultConverter uses the default criteria and tables.
func NewDefaultConverter(scale Scale) *Converter {
	return NewConverter(scoring.DefaultCriteria(), DefaultTables(), scale)
}

// Scale returns the converter's scale.
func (c *Converter) Scale() Scale { return c.scale }

// Convert maps one raw value of the named criterion to its ordinal level.
func (c *Converter) Convert(criterionID string, raw float64) (float64, error) {
	t, ok := c.tables[criterionID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCriterion, criterionID)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("%w: %s value is not a number", ErrInvalidInput, criterionID)
	}
	levels := c.scale.Levels()
	for _, b := range t.Buckets {
		if t.Direction == scoring.Cost && raw <= b.Bound {
			return levels[b.Level], nil
		}
		if t.Direction == scoring.Benefit && raw >= b.Bound {
			return levels[b.Level], nil
		}
	}
	return levels[0], nil
}

// ConvertValues converts a full row in criterion order.
func (c *Converter) ConvertValues(values []float64) ([]float64, error) {
	if len(values) != len(c.criteria) {
		return nil, fmt.Errorf("%w: %d values for %d criteria", ErrInvalidInput, len(values), len(c.criteria))
	}
	out := make([]float64, len(values))
	for j, v := range values {
		level, err := c.Convert(c.criteria[j].ID, v)
		if err != nil {
			return nil, err
		}
		out[j] = level
	}
	return out, nil
}

// ConvertMatrix returns a copy of m with every value replaced by its level.
func (c *Converter) ConvertMatrix(m *scoring.DecisionMatrix) (*scoring.DecisionMatrix, error) {
	out := &scoring.DecisionMatrix{
		Criteria:     m.Criteria,
		Alternatives: make([]scoring.Alternative, len(m.Alternatives)),
		Skipped:      m.Skipped,
	}
	for i, alt := range m.Alternatives {
		levels := make([]float64, len(alt.Values))
		for j, v := range alt.Values {
			level, err := c.Convert(m.Criteria[j].ID, v)
			if err != nil {
				return nil, fmt.Errorf("alternative %q: %w", alt.Name, err)
			}
			levels[j] = level
		}
		out.Alternatives[i] = scoring.Alternative{Name: alt.Name, Values: levels}
	}
	return out, nil
}
