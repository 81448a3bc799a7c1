package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/portfolio/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS cleaning_jobs (
	id                 UUID PRIMARY KEY,
	file_name          TEXT NOT NULL,
	stored_name        TEXT NOT NULL,
	output_name        TEXT,
	status             TEXT NOT NULL,
	rows_in            INTEGER NOT NULL DEFAULT 0,
	rows_out           INTEGER NOT NULL DEFAULT 0,
	duplicates_removed INTEGER NOT NULL DEFAULT 0,
	report             JSONB NOT NULL,
	bytes_in           BIGINT NOT NULL DEFAULT 0,
	error              TEXT,
	ip_address         TEXT,
	user_agent         TEXT,
	duration_ms        BIGINT NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS cleaning_jobs_created_at_idx ON cleaning_jobs (created_at DESC);
CREATE INDEX IF NOT EXISTS cleaning_jobs_output_name_idx ON cleaning_jobs (output_name);
`

const jobColumns = `id, file_name, stored_name, output_name, status, report, bytes_in,
	error, ip_address, user_agent, duration_ms, created_at`

// PostgresStore keeps job history in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pgx pool, verifies it and creates the schema.
func OpenPostgres(ctx context.Context, opts Options) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the job table and indexes if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecordJob(ctx context.Context, job core.Job) error {
	report, err := encodeReport(job)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO cleaning_jobs (
			id, file_name, stored_name, output_name, status,
			rows_in, rows_out, duplicates_removed, report, bytes_in,
			error, ip_address, user_agent, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		toPgUUID(job.ID),
		job.FileName,
		job.StoredName,
		toPgText(job.OutputName),
		string(job.Status),
		job.Report.RowsIn,
		job.Report.RowsOut,
		job.Report.DuplicatesRemoved,
		report,
		job.BytesIn,
		toPgText(job.Error),
		toPgText(job.IPAddress),
		toPgText(job.UserAgent),
		job.Duration.Milliseconds(),
		pgtype.Timestamptz{Time: job.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", job.ID, err)
	}
	return nil
}

func (s *PostgresStore) JobByOutput(ctx context.Context, outputName string) (*core.Job, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM cleaning_jobs
		WHERE output_name = $1
		ORDER BY created_at DESC
		LIMIT 1`, outputName)

	job, err := scanPgJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *PostgresStore) RecentJobs(ctx context.Context, limit int) ([]core.Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM cleaning_jobs
		ORDER BY created_at DESC
		LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []core.Job
	for rows.Next() {
		job, err := scanPgJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) JobStats(ctx context.Context) (core.JobStats, error) {
	var stats core.JobStats
	var lastRun pgtype.Timestamptz

	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'succeeded'),
			COUNT(*) FILTER (WHERE status <> 'succeeded'),
			COALESCE(SUM(rows_out) FILTER (WHERE status = 'succeeded'), 0),
			COALESCE(SUM(duplicates_removed) FILTER (WHERE status = 'succeeded'), 0),
			MAX(created_at)
		FROM cleaning_jobs`).Scan(
		&stats.Total,
		&stats.Succeeded,
		&stats.Failed,
		&stats.RowsCleaned,
		&stats.DuplicatesRemoved,
		&lastRun,
	)
	if err != nil {
		return core.JobStats{}, fmt.Errorf("query job stats: %w", err)
	}
	if lastRun.Valid {
		t := lastRun.Time
		stats.LastRun = &t
	}
	return stats, nil
}

func (s *PostgresStore) PurgeJobsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cleaning_jobs WHERE created_at < $1`,
		pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("purge jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgJob(row pgx.Row) (*core.Job, error) {
	var (
		job                     core.Job
		id                      pgtype.UUID
		output, errText, ip, ua pgtype.Text
		status                  string
		report                  []byte
		durationMs              int64
		createdAt               pgtype.Timestamptz
	)

	err := row.Scan(&id, &job.FileName, &job.StoredName, &output, &status, &report,
		&job.BytesIn, &errText, &ip, &ua, &durationMs, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}

	job.ID = uuidToString(id)
	job.OutputName = output.String
	job.Status = core.JobStatus(status)
	job.Error = errText.String
	job.IPAddress = ip.String
	job.UserAgent = ua.String
	job.Duration = time.Duration(durationMs) * time.Millisecond
	job.CreatedAt = createdAt.Time

	if err := decodeReport(report, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
