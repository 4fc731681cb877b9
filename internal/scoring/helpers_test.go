package scoring

import (
	"io"
	"log/slog"
	"math"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

// twoCriteria is the reduced cost/benefit schema used by the worked examples.
func twoCriteria() Criteria {
	return Criteria{
		{ID: "C1", Name: "Cost", Direction: Cost, Weight: 0.5},
		{ID: "C2", Name: "Benefit", Direction: Benefit, Weight: 0.5},
	}
}

func exampleMatrix(t *testing.T) *DecisionMatrix {
	t.Helper()
	m, err := NewDecisionMatrix(twoCriteria(), []Alternative{
		{Name: "A", Values: []float64{60, 100}},
		{Name: "B", Values: []float64{100, 60}},
	})
	if err != nil {
		t.Fatalf("building example matrix: %v", err)
	}
	return m
}

func providerMatrix(t *testing.T) *DecisionMatrix {
	t.Helper()
	m, err := NewDecisionMatrix(DefaultCriteria(), []Alternative{
		{Name: "AWS", Values: []float64{120, 92, 95, 98}},
		{Name: "GCP", Values: []float64{95, 88, 90, 94}},
		{Name: "Azure", Values: []float64{110, 85, 93, 90}},
		{Name: "DigitalOcean", Values: []float64{48, 70, 75, 72}},
	})
	if err != nil {
		t.Fatalf("building provider matrix: %v", err)
	}
	return m
}
