package scoring

import (
	"fmt"
	"sort"
)

// TieMethod controls how equal scores are ranked.
type TieMethod string

const (
	// TieMin is standard competition ranking: [0.9, 0.9, 0.5] -> [1, 1, 3].
	TieMin TieMethod = "min"
	// TieOrdinal breaks ties by input order, always yielding 1..n.
	TieOrdinal TieMethod = "ordinal"
)

// ParseTieMethod accepts the config/API spelling of a tie method.
func ParseTieMethod(s string) (TieMethod, error) {
	switch TieMethod(s) {
	case "":
		return TieMin, nil
	case TieMin, TieOrdinal:
		return TieMethod(s), nil
	}
	return "", fmt.Errorf("%w: unknown tie method %q", ErrInvalidInput, s)
}

// Rank ranks scores descending. Only exactly equal scores tie.
func Rank(scores []float64, method TieMethod) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranks := make([]int, len(scores))
	for pos, idx := range order {
		if method == TieOrdinal || pos == 0 {
			ranks[idx] = pos + 1
			continue
		}
		prev := order[pos-1]
		if scores[idx] == scores[prev] {
			ranks[idx] = ranks[prev]
		} else {
			ranks[idx] = pos + 1
		}
	}
	return ranks
}

// topPick returns the first alternative (in input order) holding the
// maximum score, plus every alternative sharing that score when more than one does.
func topPick(names []string, scores []float64) (string, []string) {
	if len(scores) == 0 {
		return "", nil
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	var tied []string
	for i := range scores {
		if scores[i] == scores[best] {
			tied = append(tied, names[i])
		}
	}
	if len(tied) < 2 {
		tied = nil
	}
	return names[best], tied
}
