package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is one persisted ranking. Failed runs keep the error and no report.
type Run struct {
	ID     uuid.UUID `json:"run_id"`
	Name   string    `json:"name,omitempty"`
	Source string    `json:"source"`
	Status RunStatus `json:"status"`

	// Options
	Variant       string `json:"variant"`
	Normalization string `json:"normalization,omitempty"`
	Crisp         bool   `json:"crisp"`
	Scale         string `json:"scale,omitempty"`

	// Summary
	Alternatives   int    `json:"alternatives"`
	Skipped        int    `json:"skipped"`
	TopSAW         string `json:"top_saw,omitempty"`
	TopWP          string `json:"top_wp,omitempty"`
	TopChoiceAgree bool   `json:"top_choice_agree"`
	Consistency    string `json:"consistency,omitempty"`

	Report *scoring.Report `json:"report,omitempty"`
	Error  string          `json:"error,omitempty"`

	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summarize copies the headline fields of rep onto the run.
func (r *Run) Summarize(rep *scoring.Report) {
	r.Report = rep
	if rep == nil {
		return
	}
	r.Variant = string(rep.Variant)
	if rep.SAW != nil && rep.SAW.Normalized != nil {
		r.Normalization = string(rep.SAW.Normalized.Method)
	}
	r.Alternatives = len(rep.Input)
	r.Skipped = len(rep.Skipped)
	if c := rep.Comparison; c != nil {
		r.TopSAW = c.TopSAW
		r.TopWP = c.TopWP
		r.TopChoiceAgree = c.TopChoiceAgree
		r.Consistency = string(c.Consistency)
	}
}

type RunFilter struct {
	Status  *RunStatus
	Variant string
	Source  string
	Since   *time.Time
	Limit   int
	Offset  int
}

type RunStats struct {
	TotalRuns       int     `json:"total_runs"`
	TotalCompleted  int     `json:"total_completed"`
	TotalFailed     int     `json:"total_failed"`
	AgreementRate   float64 `json:"agreement_rate"`
	AvgAlternatives float64 `json:"avg_alternatives"`
}

type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
	DeleteRun(ctx context.Context, id uuid.UUID) error

	// DeleteRunsBefore prunes runs created before cutoff and reports how many.
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	GetStats(ctx context.Context) (*RunStats, error)

	Close() error
}
