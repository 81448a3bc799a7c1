package core

import (
	"context"
	"time"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
)

// String returns the lowercase kind name used in reports and logs.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "text"
	}
}

// Numeric reports whether cells of this kind take part in mean imputation.
func (k Kind) Numeric() bool {
	return k == KindInteger || k == KindFloat
}

// Cell is a single value of a column.
// Only the field matching the column kind is meaningful.
type Cell struct {
	Text    string  // KindText: raw value
	Int     int64   // KindInteger
	Float   float64 // KindFloat
	Missing bool
}

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Dataset is an ordered set of columns sharing one row count.
type Dataset struct {
	Columns []*Column
	rows    int
}

// JobStatus is the outcome of a cleaning run.
type JobStatus string

const (
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is one recorded run of the cleaning demo.
type Job struct {
	ID         string        `json:"id"`
	FileName   string        `json:"file_name"`   // name as uploaded
	StoredName string        `json:"stored_name"` // name inside the upload dir
	OutputName string        `json:"output_name,omitempty"`
	Status     JobStatus     `json:"status"`
	Report     Report        `json:"report"`
	BytesIn    int64         `json:"bytes_in"`
	Error      string        `json:"error,omitempty"`
	IPAddress  string        `json:"ip_address,omitempty"`
	UserAgent  string        `json:"user_agent,omitempty"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}

// JobStats summarizes the job history.
type JobStats struct {
	Total             int64      `json:"total"`
	Succeeded         int64      `json:"succeeded"`
	Failed            int64      `json:"failed"`
	RowsCleaned       int64      `json:"rows_cleaned"`
	DuplicatesRemoved int64      `json:"duplicates_removed"`
	LastRun           *time.Time `json:"last_run,omitempty"`
}

// JobStore persists the history of cleaning runs.
// Implementations live in internal/database.
type JobStore interface {
	RecordJob(ctx context.Context, job Job) error
	JobByOutput(ctx context.Context, outputName string) (*Job, error)
	RecentJobs(ctx context.Context, limit int) ([]Job, error)
	JobStats(ctx context.Context) (JobStats, error)
	PurgeJobsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}
