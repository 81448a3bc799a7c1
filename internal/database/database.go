// Package database implements core.JobStore on top of Postgres, SQLite or
// process memory. Open picks the backend from the connection URL.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/portfolio/internal/core"
)

// Options configures Open.
type Options struct {
	URL string

	// Postgres pool settings; zero values keep pgx defaults.
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// MemoryLimit caps the in-memory store; zero uses DefaultMemoryLimit.
	MemoryLimit int
}

// Open returns the job store named by opts.URL:
//
//	""                                  in-memory store
//	postgres://..., postgresql://...    Postgres via a pgx pool
//	sqlite://path, file:path            SQLite file
//
// SQL schemas are created if missing.
func Open(ctx context.Context, opts Options) (core.JobStore, error) {
	url := strings.TrimSpace(opts.URL)

	switch {
	case url == "":
		return NewMemoryStore(opts.MemoryLimit), nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		store, err := OpenPostgres(ctx, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		store, err := OpenSQLite(ctx, strings.TrimPrefix(url, "sqlite://"))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database url %q: want postgres://, sqlite:// or file:", Redact(url))
	}
}

// Backend names the store kind for logs.
func Backend(url string) string {
	switch {
	case url == "":
		return "memory"
	case strings.HasPrefix(url, "postgres"):
		return "postgres"
	default:
		return "sqlite"
	}
}

// Redact hides the password in a connection URL.
func Redact(url string) string {
	schemeEnd := strings.Index(url, "://")
	at := strings.LastIndex(url, "@")
	if schemeEnd < 0 || at < schemeEnd {
		return url
	}
	userinfo := url[schemeEnd+3 : at]
	if i := strings.Index(userinfo, ":"); i >= 0 {
		return url[:schemeEnd+3] + userinfo[:i] + ":***" + url[at:]
	}
	return url
}

func encodeReport(job core.Job) ([]byte, error) {
	data, err := json.Marshal(job.Report)
	if err != nil {
		return nil, fmt.Errorf("encode report for job %s: %w", job.ID, err)
	}
	return data, nil
}

func decodeReport(data []byte, job *core.Job) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &job.Report); err != nil {
		return fmt.Errorf("decode report for job %s: %w", job.ID, err)
	}
	return nil
}

// clampLimit bounds RecentJobs limits.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > 500:
		return 500
	default:
		return limit
	}
}
