package broker

import (
	"context"
	"time"

	"github.com/MikeSquared-Agency/Ranker/internal/hermes"
)

func (b *Broker) retentionLoop(ctx context.Context) {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.PruneInterval())
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.pruneRuns(ctx, time.Now())
			b.publishStats(ctx)
		}
	}
}

// pruneRuns deletes runs older than the retention window. A zero window
// keeps everything.
func (b *Broker) pruneRuns(ctx context.Context, now time.Time) {
	retention := b.cfg.Retention()
	if retention <= 0 {
		return
	}
	cutoff := now.Add(-retention)
	n, err := b.store.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		b.logger.Error("failed to prune runs", "cutoff", cutoff, "error", err)
		return
	}
	if n == 0 {
		return
	}
	b.metrics.ObservePruned(n)
	b.logger.Info("pruned old runs", "deleted", n, "cutoff", cutoff)
	b.publish(hermes.SubjectRunsPruned, hermes.RunsPrunedEvent{Deleted: n, Cutoff: cutoff})
}

func (b *Broker) publishStats(ctx context.Context) {
	if b.hermes == nil {
		return
	}
	stats, err := b.store.GetStats(ctx)
	if err != nil {
		b.logger.Warn("failed to read run stats", "error", err)
		return
	}
	b.publish(hermes.SubjectRankerStats, hermes.StatsEvent{
		TotalRuns:       stats.TotalRuns,
		Completed:       stats.TotalCompleted,
		Failed:          stats.TotalFailed,
		AgreementRate:   stats.AgreementRate,
		AvgAlternatives: stats.AvgAlternatives,
		Timestamp:       time.Now().UTC(),
	})
}
