package scoring

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestBuildDecisionMatrixSkipsBadCells(t *testing.T) {
	rows := []RawRow{
		{Name: "AWS", Cells: []any{"$120", 92, "95", 98.0}},
		{Name: "Broken", Cells: []any{100, nil, 80, 80}},
		{Name: "Text", Cells: []any{100, "fast", 80, 80}},
		{Name: "GCP", Cells: []any{json.Number("95"), "88%", 90, 94}},
	}
	m, err := BuildDecisionMatrix(DefaultCriteria(), rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 alternatives, got %d", m.Len())
	}
	if got := m.Names(); got[0] != "AWS" || got[1] != "GCP" {
		t.Errorf("expected input order preserved, got %v", got)
	}
	if len(m.Skipped) != 2 {
		t.Fatalf("expected 2 skipped rows, got %d", len(m.Skipped))
	}
	if m.Skipped[0].Name != "Broken" || m.Skipped[0].Reason != "C2: missing value" {
		t.Errorf("unexpected skip record %+v", m.Skipped[0])
	}
	if m.Skipped[1].Name != "Text" {
		t.Errorf("unexpected skip record %+v", m.Skipped[1])
	}
	if m.Alternatives[0].Values[0] != 120 || m.Alternatives[1].Values[1] != 88 {
		t.Errorf("coercion failed: %v", m.Alternatives)
	}
}

func TestBuildDecisionMatrixErrors(t *testing.T) {
	criteria := twoCriteria()

	t.Run("wrong cell count", func(t *testing.T) {
		_, err := BuildDecisionMatrix(criteria, []RawRow{{Name: "A", Cells: []any{1}}})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := BuildDecisionMatrix(criteria, []RawRow{
			{Name: "A", Cells: []any{1, 2}},
			{Name: " A ", Cells: []any{3, 4}},
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := BuildDecisionMatrix(criteria, []RawRow{{Name: "  ", Cells: []any{1, 2}}})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("every row skipped", func(t *testing.T) {
		m, err := BuildDecisionMatrix(criteria, []RawRow{{Name: "A", Cells: []any{nil, 2}}})
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
		if m == nil || len(m.Skipped) != 1 {
			t.Error("expected the skipped row to be reported")
		}
	})

	t.Run("non-finite typed value", func(t *testing.T) {
		m, err := NewDecisionMatrix(criteria, []Alternative{
			{Name: "A", Values: []float64{1, 2}},
			{Name: "B", Values: []float64{math.Inf(1), 2}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Len() != 1 || len(m.Skipped) != 1 {
			t.Errorf("expected B skipped, got %d kept and %v", m.Len(), m.Skipped)
		}
	})
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{42, 42, true},
		{int64(7), 7, true},
		{float32(2.5), 2.5, true},
		{" 80 ", 80, true},
		{"$45", 45, true},
		{"88%", 88, true},
		{"1,500", 1500, true},
		{"12,5", 12.5, true},
		{"1.5", 1.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{math.NaN(), 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := CoerceFloat(tt.in)
		if ok != tt.ok {
			t.Errorf("CoerceFloat(%#v): expected ok=%v, got %v", tt.in, tt.ok, ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("CoerceFloat(%#v): expected %f, got %f", tt.in, tt.want, got)
		}
	}
}
