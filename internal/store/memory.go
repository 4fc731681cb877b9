package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps runs in process. It backs deployments without a
// database and the handler tests.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*Run
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[uuid.UUID]*Run),
		now:  time.Now,
	}
}

func (s *MemoryStore) CreateRun(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id uuid.UUID) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, filter RunFilter) ([]*Run, error) {
	s.mu.RLock()
	var runs []*Run
	for _, r := range s.runs {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.Variant != "" && r.Variant != filter.Variant {
			continue
		}
		if filter.Source != "" && r.Source != filter.Source {
			continue
		}
		if filter.Since != nil && r.CreatedAt.Before(*filter.Since) {
			continue
		}
		cp := *r
		runs = append(runs, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(runs) {
			return nil, nil
		}
		runs = runs[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) DeleteRun(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	return nil
}

func (s *MemoryStore) DeleteRunsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.runs {
		if r.CreatedAt.Before(cutoff) {
			delete(s.runs, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) GetStats(_ context.Context) (*RunStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &RunStats{TotalRuns: len(s.runs)}
	var agreed, alternatives int
	for _, r := range s.runs {
		switch r.Status {
		case StatusCompleted:
			stats.TotalCompleted++
			alternatives += r.Alternatives
			if r.TopChoiceAgree {
				agreed++
			}
		case StatusFailed:
			stats.TotalFailed++
		}
	}
	if stats.TotalCompleted > 0 {
		stats.AgreementRate = float64(agreed) / float64(stats.TotalCompleted)
		stats.AvgAlternatives = float64(alternatives) / float64(stats.TotalCompleted)
	}
	return stats, nil
}

func (s *MemoryStore) Close() error { return nil }
