package scoring

import (
	"fmt"
	"log/slog"
)

// Options fixes the per-deployment choices for a ranking run.
type Options struct {
	Variant       Variant
	Normalization NormalizationMethod // empty: the variant's default
	TieMethod     TieMethod
}

// Report is everything one ranking run produces, keyed by alternative name.
type Report struct {
	Criteria   Criteria      `json:"criteria"`
	Weights    WeightSet     `json:"weights"`
	Variant    Variant       `json:"variant"`
	SAW        *SAWResult    `json:"saw"`
	WP         *WPResult     `json:"wp"`
	Comparison *Comparison   `json:"comparison"`
	Frontier   []string      `json:"pareto_frontier"`
	Input      []Alternative `json:"input"`
	Skipped    []SkippedRow  `json:"skipped,omitempty"`
}

// Ranker runs SAW, WP and the comparison over one decision matrix.
// It holds no per-run state and is safe for concurrent use.
type Ranker struct {
	opts   Options
	logger *slog.Logger
}

// NewRanker creates a Ranker with the given options.
func NewRanker(opts Options, logger *slog.Logger) *Ranker {
	if opts.Variant == "" {
		opts.Variant = Fuzzy
	}
	if opts.TieMethod == "" {
		opts.TieMethod = TieMin
	}
	return &Ranker{opts: opts, logger: logger}
}

// Options returns the ranker's configuration.
func (r *Ranker) Options() Options { return r.opts }

// WithOptions returns a ranker sharing the logger with per-run overrides
// applied on top of the current options.
func (r *Ranker) WithOptions(variant Variant, method NormalizationMethod) *Ranker {
	opts := r.opts
	if variant != "" {
		opts.Variant = variant
		if method == "" && variant != r.opts.Variant {
			opts.Normalization = ""
		}
	}
	if method != "" {
		opts.Normalization = method
	}
	return &Ranker{opts: opts, logger: r.logger}
}

// Rank runs a complete ranking. Any validation failure aborts the run
// before a result is produced.
func (r *Ranker) Rank(m *DecisionMatrix, weights WeightSet) (*Report, error) {
	if m == nil || m.Len() == 0 {
		return nil, ErrEmptyInput
	}
	if weights == nil {
		weights = m.Criteria.DefaultWeights()
	}

	saw, err := SAW(m, weights, SAWOptions{
		Variant:       r.opts.Variant,
		Normalization: r.opts.Normalization,
		TieMethod:     r.opts.TieMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("saw: %w", err)
	}
	wp, err := WP(m, weights, r.opts.TieMethod)
	if err != nil {
		return nil, fmt.Errorf("wp: %w", err)
	}

	cmp := Compare(saw.Scores(), wp.Scores())
	if len(cmp.MissingFromSAW) > 0 || len(cmp.MissingFromWP) > 0 {
		r.logger.Warn("alternatives excluded from comparison",
			"missing_from_saw", cmp.MissingFromSAW,
			"missing_from_wp", cmp.MissingFromWP,
		)
	}
	if len(cmp.TopSAWTied) > 0 || len(cmp.TopWPTied) > 0 {
		r.logger.Info("top choice is tied, first in input order reported",
			"saw_tied", cmp.TopSAWTied,
			"wp_tied", cmp.TopWPTied,
		)
	}
	for _, s := range m.Skipped {
		r.logger.Warn("alternative skipped", "alternative", s.Name, "reason", s.Reason)
	}

	r.logger.Debug("ranking complete",
		"alternatives", m.Len(),
		"variant", saw.Variant,
		"normalization", saw.Normalized.Method,
		"top_saw", cmp.TopSAW,
		"top_wp", cmp.TopWP,
		"agreement", cmp.AgreementCount,
	)

	return &Report{
		Criteria:   m.Criteria,
		Weights:    saw.Weights,
		Variant:    saw.Variant,
		SAW:        saw,
		WP:         wp,
		Comparison: cmp,
		Frontier:   ComputeFrontier(m),
		Input:      m.Alternatives,
		Skipped:    m.Skipped,
	}, nil
}
