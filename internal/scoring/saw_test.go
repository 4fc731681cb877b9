package scoring

import (
	"errors"
	"testing"
)

func TestSAWPlainExample(t *testing.T) {
	res, err := SAW(exampleMatrix(t), WeightSet{0.5, 0.5}, SAWOptions{Variant: Plain})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Normalized.Method != ExtremeRatio {
		t.Errorf("plain SAW should default to extreme-ratio, got %s", res.Normalized.Method)
	}
	a, b := res.Entries[0], res.Entries[1]
	if !approx(a.Score, 1.0) || a.Rank != 1 {
		t.Errorf("expected A score 1.0 rank 1, got %f rank %d", a.Score, a.Rank)
	}
	if !approx(b.Score, 0.6) || b.Rank != 2 {
		t.Errorf("expected B score 0.6 rank 2, got %f rank %d", b.Score, b.Rank)
	}
	if a.TFN != nil {
		t.Error("plain SAW should not carry a TFN")
	}
}

func TestSAWContributionsSumToScore(t *testing.T) {
	res, err := SAW(providerMatrix(t), DefaultCriteria().DefaultWeights(), SAWOptions{Variant: Plain})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range res.Entries {
		var sum float64
		for _, c := range e.Contributions {
			sum += c.Weighted
		}
		if !approx(sum, e.Score) {
			t.Errorf("%s: contributions sum to %f, score %f", e.Alternative, sum, e.Score)
		}
		if e.Score < 0 || e.Score > 1 {
			t.Errorf("%s: score %f outside [0,1]", e.Alternative, e.Score)
		}
	}
}

func TestSAWSharesSumToScore(t *testing.T) {
	for _, v := range []Variant{Plain, Fuzzy} {
		t.Run(string(v), func(t *testing.T) {
			res, err := SAW(providerMatrix(t), DefaultCriteria().DefaultWeights(), SAWOptions{Variant: v})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, e := range res.Entries {
				var sum float64
				for _, c := range e.Contributions {
					sum += c.Share
					if v == Fuzzy && c.TFN == nil {
						t.Errorf("%s/%s: fuzzy contribution without TFN", e.Alternative, c.Criterion)
					}
					if v == Plain && c.TFN != nil {
						t.Errorf("%s/%s: plain contribution carries a TFN", e.Alternative, c.Criterion)
					}
				}
				if !approx(sum, e.Score) {
					t.Errorf("%s: shares sum to %f, score %f", e.Alternative, sum, e.Score)
				}
			}
		})
	}
}

func TestSAWFuzzy(t *testing.T) {
	res, err := SAW(exampleMatrix(t), WeightSet{0.5, 0.5}, SAWOptions{Variant: Fuzzy})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Normalized.Method != MinMax {
		t.Errorf("fuzzy SAW should default to min-max, got %s", res.Normalized.Method)
	}
	a, b := res.Entries[0], res.Entries[1]
	// A normalizes to (1,1): TFN (0.9,1,1). B to (0,0): TFN (0,0,0.1).
	if !approx(a.Score, 2.9/3) {
		t.Errorf("expected A %f, got %f", 2.9/3, a.Score)
	}
	if !approx(b.Score, 0.1/3) {
		t.Errorf("expected B %f, got %f", 0.1/3, b.Score)
	}
	if a.TFN == nil || !approx(a.TFN.A, 0.9) || !approx(a.TFN.M, 1) || !approx(a.TFN.B, 1) {
		t.Errorf("unexpected aggregate TFN %+v", a.TFN)
	}
	// The clamped TFN (0,0,0.1) defuzzifies above the crisp 0.
	if c := b.Contributions[0]; c.Weighted != 0 || !approx(c.Share, 0.05/3) {
		t.Errorf("expected B share %f over crisp 0, got %+v", 0.05/3, c)
	}
	if a.Rank != 1 || b.Rank != 2 {
		t.Errorf("expected ranks 1,2, got %d,%d", a.Rank, b.Rank)
	}
}

func TestSAWOverrideNormalization(t *testing.T) {
	res, err := SAW(exampleMatrix(t), WeightSet{0.5, 0.5}, SAWOptions{Variant: Plain, Normalization: MinMax})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Entries[1].Score != 0 {
		t.Errorf("expected B score 0 under min-max, got %f", res.Entries[1].Score)
	}
}

func TestSAWDoesNotModifyInput(t *testing.T) {
	m := exampleMatrix(t)
	w := WeightSet{1, 3}
	if _, err := SAW(m, w, SAWOptions{Variant: Plain}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w[0] != 1 || w[1] != 3 {
		t.Errorf("weights modified: %v", w)
	}
	if m.Alternatives[0].Values[0] != 60 {
		t.Errorf("matrix modified: %v", m.Alternatives[0].Values)
	}
}

func TestSAWErrors(t *testing.T) {
	if _, err := SAW(nil, nil, SAWOptions{}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := SAW(exampleMatrix(t), WeightSet{0.5, 0.5}, SAWOptions{Variant: "sharp"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := SAW(exampleMatrix(t), WeightSet{1}, SAWOptions{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTriangular(t *testing.T) {
	tests := []struct {
		in   float64
		want TFN
	}{
		{0.5, TFN{0.4, 0.5, 0.6}},
		{0.05, TFN{0, 0.05, 0.15}},
		{0.95, TFN{0.85, 0.95, 1}},
	}
	for _, tt := range tests {
		got := Triangular(tt.in)
		if !approx(got.A, tt.want.A) || !approx(got.M, tt.want.M) || !approx(got.B, tt.want.B) {
			t.Errorf("Triangular(%f): expected %+v, got %+v", tt.in, tt.want, got)
		}
		if got.A > got.M || got.M > got.B {
			t.Errorf("Triangular(%f): components out of order %+v", tt.in, got)
		}
	}
}

func TestFuzzyScore(t *testing.T) {
	score, tfn := FuzzyScore([]float64{1.0, 0.6}, WeightSet{0.5, 0.5})
	// (0.45,0.5,0.5) + (0.25,0.3,0.35)
	if !approx(tfn.A, 0.7) || !approx(tfn.M, 0.8) || !approx(tfn.B, 0.85) {
		t.Errorf("unexpected aggregate %+v", tfn)
	}
	if !approx(score, 2.35/3) {
		t.Errorf("expected %f, got %f", 2.35/3, score)
	}
}
