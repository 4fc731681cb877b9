package scoring

import (
	"github.com/montanaflynn/stats"
)

// Consistency summarizes how far two rankings agree.
type Consistency string

const (
	Identical Consistency = "identical"
	Partial   Consistency = "partial"
	Divergent Consistency = "divergent"
)

// ComparisonRow aligns one alternative across both methods.
type ComparisonRow struct {
	Alternative string  `json:"alternative"`
	ScoreSAW    float64 `json:"score_saw"`
	ScoreWP     float64 `json:"score_wp"`
	RankSAW     int     `json:"rank_saw"`
	RankWP      int     `json:"rank_wp"`
	Difference  int     `json:"difference"`
}

// Comparison is the SAW vs WP rank comparison.
type Comparison struct {
	Rows            []ComparisonRow `json:"rows"`
	AgreementCount  int             `json:"agreement_count"`
	Consistency     Consistency     `json:"consistency"`
	RankCorrelation float64         `json:"rank_correlation"`
	TopSAW          string          `json:"top_saw"`
	TopWP           string          `json:"top_wp"`
	TopSAWTied      []string        `json:"top_saw_tied,omitempty"`
	TopWPTied       []string        `json:"top_wp_tied,omitempty"`
	TopChoiceAgree  bool            `json:"top_choice_agree"`
	MissingFromSAW  []string        `json:"missing_from_saw,omitempty"`
	MissingFromWP   []string        `json:"missing_from_wp,omitempty"`
}

// Compare inner-joins two rankings by alternative name, in SAW input order.
// Alternatives present on only one side are listed, not silently dropped.
// Top picks are argmax of score over the joined rows, first in input order
// on ties.
func Compare(saw, wp ScoreResult) *Comparison {
	wpByName := make(map[string]ScoreEntry, len(wp))
	for _, e := range wp {
		wpByName[e.Alternative] = e
	}
	sawNames := make(map[string]bool, len(saw))

	c := &Comparison{}
	for _, s := range saw {
		sawNames[s.Alternative] = true
		w, ok := wpByName[s.Alternative]
		if !ok {
			c.MissingFromWP = append(c.MissingFromWP, s.Alternative)
			continue
		}
		c.Rows = append(c.Rows, ComparisonRow{
			Alternative: s.Alternative,
			ScoreSAW:    s.Score,
			ScoreWP:     w.Score,
			RankSAW:     s.Rank,
			RankWP:      w.Rank,
			Difference:  w.Rank - s.Rank,
		})
		if s.Rank == w.Rank {
			c.AgreementCount++
		}
	}
	for _, w := range wp {
		if !sawNames[w.Alternative] {
			c.MissingFromSAW = append(c.MissingFromSAW, w.Alternative)
		}
	}

	switch {
	case len(c.Rows) > 0 && c.AgreementCount == len(c.Rows):
		c.Consistency = Identical
	case c.AgreementCount > 0:
		c.Consistency = Partial
	default:
		c.Consistency = Divergent
	}

	names := make([]string, len(c.Rows))
	sawScores := make([]float64, len(c.Rows))
	wpScores := make([]float64, len(c.Rows))
	sawRanks := make([]float64, len(c.Rows))
	wpRanks := make([]float64, len(c.Rows))
	for i, r := range c.Rows {
		names[i] = r.Alternative
		sawScores[i], wpScores[i] = r.ScoreSAW, r.ScoreWP
		sawRanks[i], wpRanks[i] = float64(r.RankSAW), float64(r.RankWP)
	}

	c.TopSAW, c.TopSAWTied = topPick(names, sawScores)
	c.TopWP, c.TopWPTied = topPick(names, wpScores)
	c.TopChoiceAgree = c.TopSAW != "" && c.TopSAW == c.TopWP

	if len(c.Rows) > 1 {
		// Pearson over rank vectors, i.e. Spearman's rho. Constant ranks give 0.
		if rho, err := stats.Correlation(sawRanks, wpRanks); err == nil {
			c.RankCorrelation = rho
		}
	} else if len(c.Rows) == 1 {
		c.RankCorrelation = 1
	}
	return c
}
