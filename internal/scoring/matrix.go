package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Alternative is one row of the decision matrix.
type Alternative struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// RawRow is an uncoerced row as it arrives from a form, a JSON body or a
// spreadsheet. Cells may be numbers, numeric strings, nil or anything else.
type RawRow struct {
	Name  string `json:"name"`
	Cells []any  `json:"values"`
}

// SkippedRow records an alternative excluded from ranking and why.
type SkippedRow struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// DecisionMatrix is an ordered set of alternatives scored against Criteria.
// Row order is the stable input order.
type DecisionMatrix struct {
	Criteria     Criteria      `json:"criteria"`
	Alternatives []Alternative `json:"alternatives"`
	Skipped      []SkippedRow  `json:"skipped,omitempty"`
}

// NewDecisionMatrix validates typed rows. Every row must have one value per
// criterion; non-finite values exclude the row instead of failing the run.
func NewDecisionMatrix(criteria Criteria, alts []Alternative) (*DecisionMatrix, error) {
	raw := make([]RawRow, len(alts))
	for i, a := range alts {
		cells := make([]any, len(a.Values))
		for j, v := range a.Values {
			cells[j] = v
		}
		raw[i] = RawRow{Name: a.Name, Cells: cells}
	}
	return BuildDecisionMatrix(criteria, raw)
}

// BuildDecisionMatrix coerces raw rows into a DecisionMatrix.
//
// A wrong cell count or an empty/duplicate name is ErrInvalidInput. A cell
// that cannot be coerced to a finite number excludes its row, recorded in
// Skipped. No surviving rows is ErrEmptyInput; the matrix is still returned
// so the caller can report what was skipped.
func BuildDecisionMatrix(criteria Criteria, rows []RawRow) (*DecisionMatrix, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	m := &DecisionMatrix{Criteria: criteria}
	seen := make(map[string]bool, len(rows))

	for i, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: row %d has no alternative name", ErrInvalidInput, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate alternative %q", ErrInvalidInput, name)
		}
		seen[name] = true

		if len(row.Cells) != len(criteria) {
			return nil, fmt.Errorf("%w: alternative %q has %d values, want %d",
				ErrInvalidInput, name, len(row.Cells), len(criteria))
		}

		values := make([]float64, len(criteria))
		var reason string
		for j, cell := range row.Cells {
			v, ok := CoerceFloat(cell)
			if !ok {
				if cell == nil {
					reason = fmt.Sprintf("%s: missing value", criteria[j].ID)
				} else {
					reason = fmt.Sprintf("%s: non-numeric value %v", criteria[j].ID, cell)
				}
				break
			}
			values[j] = v
		}
		if reason != "" {
			m.Skipped = append(m.Skipped, SkippedRow{Name: name, Reason: reason})
			continue
		}
		m.Alternatives = append(m.Alternatives, Alternative{Name: name, Values: values})
	}

	if len(m.Alternatives) == 0 {
		return m, fmt.Errorf("%w: %d rows given, %d skipped", ErrEmptyInput, len(rows), len(m.Skipped))
	}
	return m, nil
}

// Len returns the number of alternatives.
func (m *DecisionMatrix) Len() int { return len(m.Alternatives) }

// Names returns alternative names in input order.
func (m *DecisionMatrix) Names() []string {
	names := make([]string, len(m.Alternatives))
	for i := range m.Alternatives {
		names[i] = m.Alternatives[i].Name
	}
	return names
}

// Column copies column j.
func (m *DecisionMatrix) Column(j int) []float64 {
	col := make([]float64, len(m.Alternatives))
	for i := range m.Alternatives {
		col[i] = m.Alternatives[i].Values[j]
	}
	return col
}

// CoerceFloat converts a cell to a finite float64 on a best-effort basis.
// Strings are trimmed, a leading currency sign or trailing percent sign is
// dropped and a single comma is read as a decimal comma ("12,5") unless it
// groups thousands ("1,500").
func CoerceFloat(cell any) (float64, bool) {
	var v float64
	switch c := cell.(type) {
	case float64:
		v = c
	case float32:
		v = float64(c)
	case int:
		v = float64(c)
	case int64:
		v = float64(c)
	case int32:
		v = float64(c)
	case json.Number:
		f, err := c.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, ok := parseNumeric(c)
		if !ok {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		// "1,500" is a thousands separator, "12,5" a decimal comma.
		if i := strings.Index(s, ","); len(s)-i-1 == 3 {
			s = strings.Replace(s, ",", "", 1)
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
