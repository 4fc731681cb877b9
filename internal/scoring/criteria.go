package scoring

import "fmt"

// Direction says whether a higher raw value is better (benefit) or worse (cost).
type Direction string

const (
	Cost    Direction = "cost"
	Benefit Direction = "benefit"
)

// Criterion is one column of the decision matrix.
type Criterion struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Direction Direction `json:"direction" yaml:"direction"`
	Weight    float64   `json:"weight" yaml:"weight"`

	// Fallback is the weight substituted when a run's weights sum to zero.
	// Deployments may retune Weight; Fallback stays fixed.
	Fallback float64 `json:"fallback" yaml:"fallback"`
}

// Criteria is the ordered criterion registry. Column j of every matrix
// refers to Criteria[j].
type Criteria []Criterion

// DefaultCriteria returns the cloud-provider schema: one cost criterion and
// three benefit criteria.
func DefaultCriteria() Criteria {
	return Criteria{
		{ID: "C1", Name: "Cost", Direction: Cost, Weight: 0.35, Fallback: 0.35},
		{ID: "C2", Name: "Performance", Direction: Benefit, Weight: 0.30, Fallback: 0.30},
		{ID: "C3", Name: "Security", Direction: Benefit, Weight: 0.15, Fallback: 0.15},
		{ID: "C4", Name: "Scalability", Direction: Benefit, Weight: 0.20, Fallback: 0.20},
	}
}

// Index returns the column of the criterion with the given id.
func (c Criteria) Index(id string) (int, error) {
	for i := range c {
		if c[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownCriterion, id)
}

// Lookup returns the criterion with the given id.
func (c Criteria) Lookup(id string) (Criterion, error) {
	i, err := c.Index(id)
	if err != nil {
		return Criterion{}, err
	}
	return c[i], nil
}

// IDs returns criterion ids in column order.
func (c Criteria) IDs() []string {
	ids := make([]string, len(c))
	for i := range c {
		ids[i] = c[i].ID
	}
	return ids
}

// DefaultWeights returns the registry's default weight vector.
func (c Criteria) DefaultWeights() WeightSet {
	w := make(WeightSet, len(c))
	for i := range c {
		w[i] = c[i].Weight
	}
	return w
}

// FallbackWeights returns the fixed zero-sum substitute vector.
func (c Criteria) FallbackWeights() WeightSet {
	w := make(WeightSet, len(c))
	for i := range c {
		w[i] = c[i].Fallback
	}
	return w
}

// Validate checks that the registry is usable by the scorers.
func (c Criteria) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: no criteria configured", ErrInvalidInput)
	}
	seen := make(map[string]bool, len(c))
	for _, cr := range c {
		if cr.ID == "" {
			return fmt.Errorf("%w: criterion with empty id", ErrInvalidInput)
		}
		if seen[cr.ID] {
			return fmt.Errorf("%w: duplicate criterion %q", ErrInvalidInput, cr.ID)
		}
		seen[cr.ID] = true
		if cr.Direction != Cost && cr.Direction != Benefit {
			return fmt.Errorf("%w: criterion %q has direction %q", ErrInvalidInput, cr.ID, cr.Direction)
		}
	}
	return nil
}
