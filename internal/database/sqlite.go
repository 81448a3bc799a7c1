package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/portfolio/internal/core"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cleaning_jobs (
	id                 TEXT PRIMARY KEY,
	file_name          TEXT NOT NULL,
	stored_name        TEXT NOT NULL,
	output_name        TEXT,
	status             TEXT NOT NULL,
	rows_in            INTEGER NOT NULL DEFAULT 0,
	rows_out           INTEGER NOT NULL DEFAULT 0,
	duplicates_removed INTEGER NOT NULL DEFAULT 0,
	report             TEXT NOT NULL,
	bytes_in           INTEGER NOT NULL DEFAULT 0,
	error              TEXT,
	ip_address         TEXT,
	user_agent         TEXT,
	duration_ms        INTEGER NOT NULL DEFAULT 0,
	created_at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS cleaning_jobs_created_at_idx ON cleaning_jobs (created_at DESC);
CREATE INDEX IF NOT EXISTS cleaning_jobs_output_name_idx ON cleaning_jobs (output_name);
`

// SQLiteStore keeps job history in a SQLite file. created_at is stored as
// Unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn and creates the
// schema. dsn is a file path or a file: URI.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, errors.New("sqlite path is empty")
	}

	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// withPragmas appends the busy timeout and WAL pragmas to dsn.
func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *SQLiteStore) RecordJob(ctx context.Context, job core.Job) error {
	report, err := encodeReport(job)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cleaning_jobs (
			id, file_name, stored_name, output_name, status,
			rows_in, rows_out, duplicates_removed, report, bytes_in,
			error, ip_address, user_agent, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.FileName,
		job.StoredName,
		nullString(job.OutputName),
		string(job.Status),
		job.Report.RowsIn,
		job.Report.RowsOut,
		job.Report.DuplicatesRemoved,
		string(report),
		job.BytesIn,
		nullString(job.Error),
		nullString(job.IPAddress),
		nullString(job.UserAgent),
		job.Duration.Milliseconds(),
		job.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", job.ID, err)
	}
	return nil
}

func (s *SQLiteStore) JobByOutput(ctx context.Context, outputName string) (*core.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM cleaning_jobs
		WHERE output_name = ?
		ORDER BY created_at DESC
		LIMIT 1`, outputName)

	job, err := scanSQLiteJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *SQLiteStore) RecentJobs(ctx context.Context, limit int) ([]core.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM cleaning_jobs
		ORDER BY created_at DESC
		LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []core.Job
	for rows.Next() {
		job, err := scanSQLiteJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (s *SQLiteStore) JobStats(ctx context.Context) (core.JobStats, error) {
	var stats core.JobStats
	var lastRun sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'succeeded' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status <> 'succeeded' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'succeeded' THEN rows_out ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'succeeded' THEN duplicates_removed ELSE 0 END), 0),
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
		t := time.UnixMilli(lastRun.Int64).UTC()
		stats.LastRun = &t
	}
	return stats, nil
}

func (s *SQLiteStore) PurgeJobsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cleaning_jobs WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge jobs: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteJob(row scanner) (*core.Job, error) {
	var (
		job                     core.Job
		output, errText, ip, ua sql.NullString
		status, report          string
		durationMs, createdAt   int64
	)

	err := row.Scan(&job.ID, &job.FileName, &job.StoredName, &output, &status, &report,
		&job.BytesIn, &errText, &ip, &ua, &durationMs, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}

	job.OutputName = output.String
	job.Status = core.JobStatus(status)
	job.Error = errText.String
	job.IPAddress = ip.String
	job.UserAgent = ua.String
	job.Duration = time.Duration(durationMs) * time.Millisecond
	job.CreatedAt = time.UnixMilli(createdAt).UTC()

	if err := decodeReport([]byte(report), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
