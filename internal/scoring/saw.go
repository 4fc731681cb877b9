package scoring

import "fmt"

// Variant selects plain or fuzzy SAW.
type Variant string

const (
	Plain Variant = "plain"
	Fuzzy Variant = "fuzzy"
)

// ParseVariant accepts the config/API spelling of a SAW variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case Plain, Fuzzy:
		return Variant(s), nil
	}
	return "", fmt.Errorf("%w: unknown SAW variant %q", ErrInvalidInput, s)
}

// DefaultNormalization is the method each variant uses unless overridden.
func (v Variant) DefaultNormalization() NormalizationMethod {
	if v == Fuzzy {
		return MinMax
	}
	return ExtremeRatio
}

// ScoreEntry is one alternative's score and rank under a method.
type ScoreEntry struct {
	Alternative string  `json:"alternative"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
}

// ScoreResult lists entries in input order.
type ScoreResult []ScoreEntry

// Contribution captures one criterion's share of a SAW score. Weighted is
// always the crisp r*w. Share is what the criterion adds to Score: Weighted
// for plain SAW, the centroid of TFN for fuzzy SAW. Shares sum to Score.
type Contribution struct {
	Criterion  string  `json:"criterion"`
	Normalized float64 `json:"normalized"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Share      float64 `json:"share"`
	TFN        *TFN    `json:"tfn,omitempty"`
}

// SAWEntry is the SAW outcome for one alternative.
type SAWEntry struct {
	ScoreEntry
	TFN           *TFN           `json:"tfn,omitempty"`
	Contributions []Contribution `json:"contributions"`
}

// SAWOptions configures a SAW run. An empty Normalization uses the
// variant's default.
type SAWOptions struct {
	Variant       Variant
	Normalization NormalizationMethod
	TieMethod     TieMethod
}

// SAWResult is the complete SAW outcome.
type SAWResult struct {
	Variant    Variant           `json:"variant"`
	Weights    WeightSet         `json:"weights"`
	Normalized *NormalizedMatrix `json:"normalized"`
	Entries    []SAWEntry        `json:"entries"`
}

// Scores drops the per-criterion detail.
func (r *SAWResult) Scores() ScoreResult {
	out := make(ScoreResult, len(r.Entries))
	for i := range r.Entries {
		out[i] = r.Entries[i].ScoreEntry
	}
	return out
}

// SAW scores every alternative by simple additive weighting and ranks them
// descending. It is deterministic and does not modify its inputs.
func SAW(m *DecisionMatrix, weights WeightSet, opts SAWOptions) (*SAWResult, error) {
	if m == nil || m.Len() == 0 {
		return nil, ErrEmptyInput
	}
	if opts.Variant == "" {
		opts.Variant = Plain
	}
	if _, err := ParseVariant(string(opts.Variant)); err != nil {
		return nil, err
	}
	w, err := weights.Normalize(m.Criteria)
	if err != nil {
		return nil, err
	}
	method := opts.Normalization
	if method == "" {
		method = opts.Variant.DefaultNormalization()
	}
	norm, err := Normalize(m, method)
	if err != nil {
		return nil, err
	}

	res := &SAWResult{
		Variant:    opts.Variant,
		Weights:    w,
		Normalized: norm,
		Entries:    make([]SAWEntry, m.Len()),
	}
	scores := make([]float64, m.Len())

	for i, row := range norm.Values {
		contribs := make([]Contribution, len(row))
		var total float64
		for j, r := range row {
			contribs[j] = Contribution{
				Criterion:  m.Criteria[j].ID,
				Normalized: r,
				Weight:     w[j],
				Weighted:   r * w[j],
			}
			contribs[j].Share = contribs[j].Weighted
			if opts.Variant == Fuzzy {
				tfn := Triangular(r).Scale(w[j])
				contribs[j].TFN = &tfn
				contribs[j].Share = tfn.Centroid()
			}
			total += contribs[j].Weighted
		}

		entry := SAWEntry{
			ScoreEntry:    ScoreEntry{Alternative: norm.Alternatives[i], Score: total},
			Contributions: contribs,
		}
		if opts.Variant == Fuzzy {
			score, tfn := FuzzyScore(row, w)
			entry.Score = score
			entry.TFN = &tfn
		}
		res.Entries[i] = entry
		scores[i] = entry.Score
	}

	for i, rank := range Rank(scores, opts.TieMethod) {
		res.Entries[i].Rank = rank
	}
	return res, nil
}
