package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

// RankRequestEvent asks the broker to rank a matrix. Values follow the same
// best-effort coercion as the HTTP API.
type RankRequestEvent struct {
	RequestID     string           `json:"request_id,omitempty"`
	Name          string           `json:"name,omitempty"`
	Alternatives  []scoring.RawRow `json:"alternatives"`
	Weights       []float64        `json:"weights,omitempty"`
	Variant       string           `json:"variant,omitempty"`
	Normalization string           `json:"normalization,omitempty"`
	Crisp         bool             `json:"crisp,omitempty"`
	Scale         string           `json:"scale,omitempty"`
	Source        string           `json:"source,omitempty"`
}

type RunCompletedEvent struct {
	RunID          string `json:"run_id"`
	RequestID      string `json:"request_id,omitempty"`
	Name           string `json:"name,omitempty"`
	Variant        string `json:"variant"`
	Alternatives   int    `json:"alternatives"`
	Skipped        int    `json:"skipped"`
	TopSAW         string `json:"top_saw"`
	TopWP          string `json:"top_wp"`
	TopChoiceAgree bool   `json:"top_choice_agree"`
	Consistency    string `json:"consistency"`
	DurationMs     int64  `json:"duration_ms"`
}

type RunFailedEvent struct {
	RunID     string `json:"run_id"`
	RequestID string `json:"request_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Error     string `json:"error"`
}

type RunsPrunedEvent struct {
	Deleted int64     `json:"deleted"`
	Cutoff  time.Time `json:"cutoff"`
}

type StatsEvent struct {
	TotalRuns       int       `json:"total_runs"`
	Completed       int       `json:"completed"`
	Failed          int       `json:"failed"`
	AgreementRate   float64   `json:"agreement_rate"`
	AvgAlternatives float64   `json:"avg_alternatives"`
	Timestamp       time.Time `json:"timestamp"`
}
