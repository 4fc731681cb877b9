package broker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Ranker/internal/config"
	"github.com/MikeSquared-Agency/Ranker/internal/hermes"
	"github.com/MikeSquared-Agency/Ranker/internal/metrics"
	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
	"github.com/MikeSquared-Agency/Ranker/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockHermes implements hermes.Client for testing
type MockHermes struct {
	mock.Mock
	handlers map[string]func(string, []byte)
}

func (m *MockHermes) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockHermes) Subscribe(subject string, handler func(string, []byte)) error {
	if m.handlers == nil {
		m.handlers = make(map[string]func(string, []byte))
	}
	m.handlers[subject] = handler
	return nil
}

func (m *MockHermes) Close() {}

type failingStore struct {
	*store.MemoryStore
}

func (f *failingStore) CreateRun(_ context.Context, _ *store.Run) error {
	return errors.New("connection refused")
}

func testConfig() *config.Config {
	return &config.Config{
		Ranking: config.RankingConfig{
			Variant:   "fuzzy",
			Scale:     "100",
			TieMethod: "min",
			Weights: config.RankingWeights{
				Cost:        0.35,
				Performance: 0.30,
				Security:    0.15,
				Scalability: 0.20,
			},
		},
		Runs: config.RunsConfig{
			RetentionHours:  24,
			PruneIntervalMs: 10,
		},
	}
}

func newTestBroker(t *testing.T, s store.Store, h hermes.Client) *Broker {
	t.Helper()
	return newTestBrokerWithConfig(t, testConfig(), s, h)
}

func newTestBrokerWithConfig(t *testing.T, cfg *config.Config, s store.Store, h hermes.Client) *Broker {
	t.Helper()
	opts, err := cfg.RankerOptions()
	require.NoError(t, err)
	r := scoring.NewRanker(opts, discardLogger())
	return New(s, h, r, metrics.New(), cfg, discardLogger())
}

func providerRows() []scoring.RawRow {
	return []scoring.RawRow{
		{Name: "AWS", Cells: []any{120, 92, 95, 98}},
		{Name: "GCP", Cells: []any{"95", "88", "90", "94"}},
		{Name: "DigitalOcean", Cells: []any{48, 70, 75, 72}},
		{Name: "Broken", Cells: []any{100, nil, 80, 80}},
	}
}

func TestExecuteCompleted(t *testing.T) {
	ms := store.NewMemoryStore()
	mh := &MockHermes{}
	mh.On("Publish", mock.MatchedBy(func(s string) bool { return len(s) > 0 }), mock.AnythingOfType("hermes.RunCompletedEvent")).Return(nil)
	b := newTestBroker(t, ms, mh)

	run, err := b.Execute(context.Background(), Request{Name: "q3", Source: SourceAPI, Rows: providerRows(), RequestID: "req-1"})
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, store.StatusCompleted, run.Status)
	assert.Equal(t, "fuzzy", run.Variant)
	assert.Equal(t, "min_max", run.Normalization)
	assert.Equal(t, 3, run.Alternatives)
	assert.Equal(t, 1, run.Skipped)
	assert.NotEmpty(t, run.TopSAW)
	require.NotNil(t, run.Report)

	stored, err := ms.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, run.TopWP, stored.TopWP)

	mh.AssertNumberOfCalls(t, "Publish", 1)
	call := mh.Calls[0]
	assert.Equal(t, hermes.SubjectRunCompleted(run.ID.String()), call.Arguments.String(0))
	evt := call.Arguments.Get(1).(hermes.RunCompletedEvent)
	assert.Equal(t, "req-1", evt.RequestID)
	assert.Equal(t, run.TopSAW, evt.TopSAW)
}

func TestExecuteCrispPlain(t *testing.T) {
	b := newTestBroker(t, store.NewMemoryStore(), nil)

	run, err := b.Execute(context.Background(), Request{
		Source:  SourceAPI,
		Rows:    providerRows(),
		Variant: scoring.Plain,
		Crisp:   true,
		Scale:   "4",
		Weights: scoring.WeightSet{1, 1, 1, 1},
	})
	require.NoError(t, err)
	assert.True(t, run.Crisp)
	assert.Equal(t, "4", run.Scale)
	assert.Equal(t, "plain", run.Variant)
	assert.Equal(t, "extreme_ratio", run.Normalization)

	for _, alt := range run.Report.Input {
		for _, v := range alt.Values {
			assert.Contains(t, []float64{1, 2, 3, 4}, v)
		}
	}
	for _, w := range run.Report.Weights {
		assert.InDelta(t, 0.25, w, 1e-9)
	}
}

func TestExecuteCrispUsesConfiguredScale(t *testing.T) {
	cfg := testConfig()
	cfg.Ranking.Scale = "4"
	b := newTestBrokerWithConfig(t, cfg, store.NewMemoryStore(), nil)

	req, err := decodeRankRequest([]byte(`{"alternatives":[{"name":"A","values":[120,92,95,98]},{"name":"B","values":[48,70,75,72]}],"variant":"plain","crisp":true}`))
	require.NoError(t, err)

	run, err := b.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "4", run.Scale)
	for _, alt := range run.Report.Input {
		for _, v := range alt.Values {
			assert.Contains(t, []float64{1, 2, 3, 4}, v)
		}
	}
}

func TestExecuteZeroWeightsIgnoreConfiguredDefaults(t *testing.T) {
	for name, weights := range map[string]config.RankingWeights{
		"retuned": {Cost: 0.25, Performance: 0.25, Security: 0.25, Scalability: 0.25},
		"zeroed":  {},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Ranking.Weights = weights
			b := newTestBrokerWithConfig(t, cfg, store.NewMemoryStore(), nil)

			run, err := b.Execute(context.Background(), Request{
				Source:  SourceAPI,
				Rows:    providerRows(),
				Variant: scoring.Plain,
				Weights: scoring.WeightSet{0, 0, 0, 0},
			})
			require.NoError(t, err)
			require.NotNil(t, run.Report)
			want := []float64{0.35, 0.30, 0.15, 0.20}
			require.Len(t, run.Report.Weights, len(want))
			for i, w := range want {
				assert.InDelta(t, w, run.Report.Weights[i], 1e-9)
			}
		})
	}
}

func TestExecuteFailedIsPersistedAndPublished(t *testing.T) {
	ms := store.NewMemoryStore()
	mh := &MockHermes{}
	mh.On("Publish", mock.Anything, mock.AnythingOfType("hermes.RunFailedEvent")).Return(nil)
	b := newTestBroker(t, ms, mh)

	rows := []scoring.RawRow{
		{Name: "Free", Cells: []any{0, 90, 90, 90}},
		{Name: "Paid", Cells: []any{50, 80, 80, 80}},
	}
	run, err := b.Execute(context.Background(), Request{Source: SourceHermes, Rows: rows})
	require.Error(t, err)
	assert.True(t, errors.Is(err, scoring.ErrInvalidInput))
	require.NotNil(t, run)
	assert.Equal(t, store.StatusFailed, run.Status)
	assert.Contains(t, run.Error, "wp")

	failed := store.StatusFailed
	runs, _ := ms.ListRuns(context.Background(), store.RunFilter{Status: &failed})
	assert.Len(t, runs, 1)
	mh.AssertNumberOfCalls(t, "Publish", 1)
}

func TestExecuteEmptyInput(t *testing.T) {
	b := newTestBroker(t, store.NewMemoryStore(), nil)
	run, err := b.Execute(context.Background(), Request{Rows: []scoring.RawRow{{Name: "A", Cells: []any{"n/a", 1, 1, 1}}}})
	assert.True(t, errors.Is(err, scoring.ErrEmptyInput))
	require.NotNil(t, run)
	assert.Equal(t, 1, run.Skipped)
}

func TestExecuteStoreFailure(t *testing.T) {
	b := newTestBroker(t, &failingStore{MemoryStore: store.NewMemoryStore()}, nil)
	run, err := b.Execute(context.Background(), Request{Rows: providerRows()})
	assert.Error(t, err)
	assert.Nil(t, run)
}

func TestRankRequestSubscription(t *testing.T) {
	ms := store.NewMemoryStore()
	mh := &MockHermes{}
	mh.On("Publish", mock.Anything, mock.Anything).Return(nil)
	b := newTestBroker(t, ms, mh)
	b.SetupSubscriptions()

	handler, ok := mh.handlers[hermes.SubjectRankRequest]
	require.True(t, ok, "expected rank request subscription")

	payload, _ := json.Marshal(hermes.RankRequestEvent{
		RequestID:    "abc",
		Name:         "via nats",
		Alternatives: providerRows(),
		Variant:      "plain",
	})
	handler(hermes.SubjectRankRequest, payload)

	runs, err := ms.ListRuns(context.Background(), store.RunFilter{Source: SourceHermes})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "plain", runs[0].Variant)
	assert.Equal(t, "via nats", runs[0].Name)

	handler(hermes.SubjectRankRequest, []byte("{not json"))
	handler(hermes.SubjectRankRequest, []byte(`{"alternatives":[],"variant":"sharp"}`))
	runs, _ = ms.ListRuns(context.Background(), store.RunFilter{})
	assert.Len(t, runs, 1, "undecodable requests must not create runs")
}

func TestDecodeRankRequest(t *testing.T) {
	req, err := decodeRankRequest([]byte(`{"alternatives":[{"name":"A","values":[1,2,3,4]}],"weights":[1,0,0,0],"crisp":true,"scale":"4","normalization":"min_max"}`))
	require.NoError(t, err)
	assert.Equal(t, SourceHermes, req.Source)
	assert.Equal(t, scoring.WeightSet{1, 0, 0, 0}, req.Weights)
	assert.Equal(t, scoring.MinMax, req.Normalization)
	assert.Equal(t, "4", string(req.Scale))

	_, err = decodeRankRequest([]byte(`{"crisp":true,"scale":"7"}`))
	assert.Error(t, err)

	req, err = decodeRankRequest([]byte(`{"alternatives":[{"name":"A","values":[1,2,3,4]}],"crisp":true}`))
	require.NoError(t, err)
	assert.True(t, req.Crisp)
	assert.Empty(t, req.Scale)
}

func TestPruneRuns(t *testing.T) {
	ms := store.NewMemoryStore()
	mh := &MockHermes{}
	mh.On("Publish", hermes.SubjectRunsPruned, mock.AnythingOfType("hermes.RunsPrunedEvent")).Return(nil)
	b := newTestBroker(t, ms, mh)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, ms.CreateRun(ctx, &store.Run{ID: uuid.New(), Status: store.StatusCompleted, CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, ms.CreateRun(ctx, &store.Run{ID: uuid.New(), Status: store.StatusCompleted, CreatedAt: now}))

	b.pruneRuns(ctx, now)

	runs, _ := ms.ListRuns(ctx, store.RunFilter{})
	assert.Len(t, runs, 1)
	mh.AssertCalled(t, "Publish", hermes.SubjectRunsPruned, mock.AnythingOfType("hermes.RunsPrunedEvent"))

	// Nothing left to prune: no event.
	b.pruneRuns(ctx, now)
	mh.AssertNumberOfCalls(t, "Publish", 1)
}

func TestPruneDisabled(t *testing.T) {
	ms := store.NewMemoryStore()
	b := newTestBroker(t, ms, nil)
	b.cfg.Runs.RetentionHours = 0
	ctx := context.Background()

	require.NoError(t, ms.CreateRun(ctx, &store.Run{Status: store.StatusCompleted, CreatedAt: time.Now().Add(-1000 * time.Hour)}))
	b.pruneRuns(ctx, time.Now())

	runs, _ := ms.ListRuns(ctx, store.RunFilter{})
	assert.Len(t, runs, 1)
}

func TestStartStop(t *testing.T) {
	mh := &MockHermes{}
	mh.On("Publish", mock.Anything, mock.Anything).Return(nil)
	b := newTestBroker(t, store.NewMemoryStore(), mh)

	b.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	b.Stop()
	b.Stop()

	mh.AssertCalled(t, "Publish", hermes.SubjectRankerStats, mock.AnythingOfType("hermes.StatsEvent"))
}
