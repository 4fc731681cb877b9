package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS ranking_runs (
	run_id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name             TEXT NOT NULL DEFAULT '',
	source           TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	variant          TEXT NOT NULL DEFAULT '',
	normalization    TEXT NOT NULL DEFAULT '',
	crisp            BOOLEAN NOT NULL DEFAULT FALSE,
	scale            TEXT NOT NULL DEFAULT '',
	alternatives     INT NOT NULL DEFAULT 0,
	skipped          INT NOT NULL DEFAULT 0,
	top_saw          TEXT NOT NULL DEFAULT '',
	top_wp           TEXT NOT NULL DEFAULT '',
	top_choice_agree BOOLEAN NOT NULL DEFAULT FALSE,
	consistency      TEXT NOT NULL DEFAULT '',
	report           JSONB,
	error            TEXT NOT NULL DEFAULT '',
	duration_ms      BIGINT NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ranking_runs_created_at_idx ON ranking_runs (created_at);
`

// EnsureSchema creates the runs table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const runColumns = `run_id, name, source, status,
	variant, normalization, crisp, scale,
	alternatives, skipped, top_saw, top_wp, top_choice_agree, consistency,
	report, error, duration_ms, created_at`

func (s *PostgresStore) CreateRun(ctx context.Context, run *Run) error {
	var reportJSON []byte
	if run.Report != nil {
		var err error
		if reportJSON, err = json.Marshal(run.Report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO ranking_runs (run_id, name, source, status,
			variant, normalization, crisp, scale,
			alternatives, skipped, top_saw, top_wp, top_choice_agree, consistency,
			report, error, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at`,
		run.ID, run.Name, run.Source, run.Status,
		run.Variant, run.Normalization, run.Crisp, run.Scale,
		run.Alternatives, run.Skipped, run.TopSAW, run.TopWP, run.TopChoiceAgree, run.Consistency,
		reportJSON, run.Error, run.DurationMs,
	).Scan(&run.CreatedAt)
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+runColumns+`
		FROM ranking_runs WHERE run_id = $1`, id)
	r, err := scanRun(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM ranking_runs WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.Variant != "" {
		n++
		query += fmt.Sprintf(" AND variant = $%d", n)
		args = append(args, filter.Variant)
	}
	if filter.Source != "" {
		n++
		query += fmt.Sprintf(" AND source = $%d", n)
		args = append(args, filter.Source)
	}
	if filter.Since != nil {
		n++
		query += fmt.Sprintf(" AND created_at >= $%d", n)
		args = append(args, *filter.Since)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) DeleteRun(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM ranking_runs WHERE run_id = $1`, id)
	return err
}

func (s *PostgresStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ranking_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) GetStats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN top_choice_agree THEN 1.0 ELSE 0.0 END) FILTER (WHERE status = 'completed'), 0),
			COALESCE(AVG(alternatives) FILTER (WHERE status = 'completed'), 0)
		FROM ranking_runs`,
	).Scan(&stats.TotalRuns, &stats.TotalCompleted, &stats.TotalFailed, &stats.AgreementRate, &stats.AvgAlternatives)
	return stats, err
}

func scanRun(row pgx.Row) (*Run, error) {
	r := &Run{}
	var reportJSON []byte
	if err := row.Scan(
		&r.ID, &r.Name, &r.Source, &r.Status,
		&r.Variant, &r.Normalization, &r.Crisp, &r.Scale,
		&r.Alternatives, &r.Skipped, &r.TopSAW, &r.TopWP, &r.TopChoiceAgree, &r.Consistency,
		&reportJSON, &r.Error, &r.DurationMs, &r.CreatedAt,
	); err != nil {
		return nil, err
	}
	if reportJSON != nil {
		if err := json.Unmarshal(reportJSON, &r.Report); err != nil {
			return nil, fmt.Errorf("decode report for run %s: %w", r.ID, err)
		}
	}
	return r, nil
}
