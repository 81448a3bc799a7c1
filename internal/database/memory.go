package database

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/portfolio/internal/core"
)

// DefaultMemoryLimit is how many jobs the memory store keeps.
const DefaultMemoryLimit = 1000

// MemoryStore keeps job history in process memory. The oldest jobs are
// evicted once the limit is reached.
type MemoryStore struct {
	mu    sync.RWMutex
	jobs  []core.Job // oldest first
	limit int
}

// NewMemoryStore creates a memory store holding at most limit jobs.
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &MemoryStore{limit: limit}
}

func (m *MemoryStore) RecordJob(_ context.Context, job core.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobs = append(m.jobs, job)
	if over := len(m.jobs) - m.limit; over > 0 {
		m.jobs = append(m.jobs[:0:0], m.jobs[over:]...)
	}
	return nil
}

func (m *MemoryStore) JobByOutput(_ context.Context, outputName string) (*core.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.jobs) - 1; i >= 0; i-- {
		if outputName != "" && m.jobs[i].OutputName == outputName {
			job := m.jobs[i]
			return &job, nil
		}
	}
	return nil, core.ErrJobNotFound
}

func (m *MemoryStore) RecentJobs(_ context.Context, limit int) ([]core.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = clampLimit(limit)
	out := make([]core.Job, 0, min(limit, len(m.jobs)))
	for i := len(m.jobs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.jobs[i])
	}
	return out, nil
}

func (m *MemoryStore) JobStats(context.Context) (core.JobStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats core.JobStats
	for _, j := range m.jobs {
		stats.Total++
		if j.Status == core.JobSucceeded {
			stats.Succeeded++
			stats.RowsCleaned += int64(j.Report.RowsOut)
			stats.DuplicatesRemoved += int64(j.Report.DuplicatesRemoved)
		} else {
			stats.Failed++
		}
		if stats.LastRun == nil || j.CreatedAt.After(*stats.LastRun) {
			t := j.CreatedAt
			stats.LastRun = &t
		}
	}
	return stats, nil
}

func (m *MemoryStore) PurgeJobsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.jobs[:0]
	var purged int64
	for _, j := range m.jobs {
		if j.CreatedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, j)
	}
	m.jobs = kept
	return purged, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
