package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Ranker/internal/config"
	"github.com/MikeSquared-Agency/Ranker/internal/crisp"
	"github.com/MikeSquared-Agency/Ranker/internal/hermes"
	"github.com/MikeSquared-Agency/Ranker/internal/metrics"
	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
	"github.com/MikeSquared-Agency/Ranker/internal/store"
)

const (
	SourceAPI    = "api"
	SourceHermes = "hermes"
)

// Request is one ranking run as submitted over HTTP or NATS. Zero-valued
// options fall back to the configured defaults.
type Request struct {
	RequestID     string
	Name          string
	Source        string
	Rows          []scoring.RawRow
	Weights       scoring.WeightSet
	Variant       scoring.Variant
	Normalization scoring.NormalizationMethod
	Crisp         bool
	Scale         crisp.Scale
}

// Broker executes ranking runs, persists and announces them, and prunes old
// runs in the background.
type Broker struct {
	store    store.Store
	hermes   hermes.Client
	ranker   *scoring.Ranker
	criteria scoring.Criteria
	metrics  *metrics.Metrics
	cfg      *config.Config
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(s store.Store, h hermes.Client, r *scoring.Ranker, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) *Broker {
	return &Broker{
		store:    s,
		hermes:   h,
		ranker:   r,
		criteria: cfg.Criteria(),
		metrics:  m,
		cfg:      cfg,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (b *Broker) Start(ctx context.Context) {
	if b.cfg.PruneInterval() <= 0 {
		return
	}
	b.wg.Add(1)
	go b.retentionLoop(ctx)
}

func (b *Broker) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
	b.wg.Wait()
}

// Criteria returns the registry runs are scored against.
func (b *Broker) Criteria() scoring.Criteria { return b.criteria }

// Converter returns a crisp converter for scale, or the configured scale
// when empty.
func (b *Broker) Converter(scale crisp.Scale) *crisp.Converter {
	if scale == "" {
		scale = crisp.Scale(b.cfg.Ranking.Scale)
	}
	return crisp.NewConverter(b.criteria, crisp.DefaultTables(), scale)
}

// Ranker returns the configured ranker with per-request overrides.
func (b *Broker) Ranker(variant scoring.Variant, method scoring.NormalizationMethod) *scoring.Ranker {
	return b.ranker.WithOptions(variant, method)
}

// Execute runs one ranking end to end. The run is persisted and published
// whether it succeeds or fails; on failure the returned error wraps the
// scoring sentinel so callers can map it.
func (b *Broker) Execute(ctx context.Context, req Request) (*store.Run, error) {
	start := time.Now()
	run := &store.Run{
		Name:   req.Name,
		Source: req.Source,
		Crisp:  req.Crisp,
	}
	if req.Crisp {
		run.Scale = string(b.Converter(req.Scale).Scale())
	}

	ranker := b.Ranker(req.Variant, req.Normalization)
	run.Variant = string(ranker.Options().Variant)

	rep, skipped, err := b.rank(ranker, req)
	run.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		run.Status = store.StatusFailed
		run.Error = err.Error()
		run.Skipped = skipped
		b.finish(ctx, run, req, time.Since(start))
		return run, err
	}

	run.Summarize(rep)
	run.Status = store.StatusCompleted
	if err := b.finish(ctx, run, req, time.Since(start)); err != nil {
		return nil, err
	}
	return run, nil
}

func (b *Broker) rank(ranker *scoring.Ranker, req Request) (*scoring.Report, int, error) {
	m, err := scoring.BuildDecisionMatrix(b.criteria, req.Rows)
	if err != nil {
		if m != nil {
			return nil, len(m.Skipped), err
		}
		return nil, 0, err
	}
	if req.Crisp {
		converted, err := b.Converter(req.Scale).ConvertMatrix(m)
		if err != nil {
			return nil, len(m.Skipped), fmt.Errorf("crisp: %w", err)
		}
		m = converted
	}
	weights := req.Weights
	if weights == nil {
		weights = b.criteria.DefaultWeights()
	}
	rep, err := ranker.Rank(m, weights)
	if err != nil {
		return nil, len(m.Skipped), err
	}
	return rep, len(m.Skipped), nil
}

func (b *Broker) finish(ctx context.Context, run *store.Run, req Request, d time.Duration) error {
	outcome := metrics.OutcomeCompleted
	if run.Status == store.StatusFailed {
		outcome = metrics.OutcomeFailed
	}
	b.metrics.ObserveRun(run.Variant, outcome, d, run.Alternatives, run.Skipped, run.TopChoiceAgree)

	if err := b.store.CreateRun(ctx, run); err != nil {
		b.logger.Error("failed to persist run", "name", run.Name, "status", run.Status, "error", err)
		return fmt.Errorf("persist run: %w", err)
	}

	if run.Status == store.StatusFailed {
		b.logger.Warn("ranking run failed", "run_id", run.ID, "source", run.Source, "error", run.Error)
		b.publish(hermes.SubjectRunFailed(run.ID.String()), hermes.RunFailedEvent{
			RunID:     run.ID.String(),
			RequestID: req.RequestID,
			Name:      run.Name,
			Error:     run.Error,
		})
		return nil
	}

	b.logger.Info("ranking run completed",
		"run_id", run.ID,
		"source", run.Source,
		"variant", run.Variant,
		"alternatives", run.Alternatives,
		"top_saw", run.TopSAW,
		"top_wp", run.TopWP,
		"consistency", run.Consistency,
		"duration_ms", run.DurationMs,
	)
	b.publish(hermes.SubjectRunCompleted(run.ID.String()), hermes.RunCompletedEvent{
		RunID:          run.ID.String(),
		RequestID:      req.RequestID,
		Name:           run.Name,
		Variant:        run.Variant,
		Alternatives:   run.Alternatives,
		Skipped:        run.Skipped,
		TopSAW:         run.TopSAW,
		TopWP:          run.TopWP,
		TopChoiceAgree: run.TopChoiceAgree,
		Consistency:    run.Consistency,
		DurationMs:     run.DurationMs,
	})
	return nil
}

func (b *Broker) publish(subject string, data interface{}) {
	if b.hermes == nil {
		return
	}
	if err := b.hermes.Publish(subject, data); err != nil {
		b.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// SetupSubscriptions registers the NATS rank-request consumer.
func (b *Broker) SetupSubscriptions() {
	if b.hermes == nil {
		return
	}

	_ = b.hermes.Subscribe(hermes.SubjectRankRequest, func(_ string, data []byte) {
		req, err := decodeRankRequest(data)
		if err != nil {
			b.logger.Warn("invalid rank request event", "error", err)
			return
		}
		if _, err := b.Execute(context.Background(), req); err != nil && !isInputError(err) {
			b.logger.Error("rank request failed", "request_id", req.RequestID, "error", err)
		}
	})
}

func decodeRankRequest(data []byte) (Request, error) {
	var evt hermes.RankRequestEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return Request{}, err
	}
	req := Request{
		RequestID: evt.RequestID,
		Name:      evt.Name,
		Source:    evt.Source,
		Rows:      evt.Alternatives,
		Crisp:     evt.Crisp,
		Scale:     crisp.Scale(evt.Scale),
	}
	if req.Source == "" {
		req.Source = SourceHermes
	}
	if evt.Weights != nil {
		req.Weights = scoring.WeightSet(evt.Weights)
	}
	var err error
	if evt.Variant != "" {
		if req.Variant, err = scoring.ParseVariant(evt.Variant); err != nil {
			return Request{}, err
		}
	}
	if evt.Normalization != "" {
		if req.Normalization, err = scoring.ParseNormalizationMethod(evt.Normalization); err != nil {
			return Request{}, err
		}
	}
	// An empty scale stays empty so Execute applies the configured one.
	if evt.Scale != "" {
		if req.Scale, err = crisp.ParseScale(evt.Scale); err != nil {
			return Request{}, err
		}
	}
	return req, nil
}

func isInputError(err error) bool {
	return errors.Is(err, scoring.ErrInvalidInput) ||
		errors.Is(err, scoring.ErrEmptyInput) ||
		errors.Is(err, scoring.ErrUnknownCriterion)
}
