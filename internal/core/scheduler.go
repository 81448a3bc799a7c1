package core

// scheduler.go provides background maintenance for the upload directory.
//
// The retention sweeper runs periodically to:
//  1. Delete uploads and cleaned files older than the retention window
//  2. Purge job history older than the same cutoff
//
// The sweeper is long-running and context-aware for graceful shutdown. It
// logs failures but keeps running; a failed sweep is retried next tick.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/portfolio/internal/logging"
)

// SweepConfig holds configuration for the retention sweeper.
type SweepConfig struct {
	Retention time.Duration // How long files and history are kept (default: 24h)
	Interval  time.Duration // How often to run (default: 1h)
}

// SweepResult counts what one sweep removed.
type SweepResult struct {
	FilesRemoved int
	JobsPurged   int64
}

func (c SweepConfig) withDefaults() SweepConfig {
	if c.Retention <= 0 {
		c.Retention = 24 * time.Hour
	}
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	return c
}

// StartSweeper runs Sweep immediately and then every cfg.Interval until ctx
// is cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartSweeper(ctx context.Context, cfg SweepConfig) {
	cfg = cfg.withDefaults()
	log := logging.FromContext(ctx)

	log.Info("retention sweeper started",
		"retention", cfg.Retention.String(),
		"interval", cfg.Interval.String(),
	)

	s.runSweep(ctx, cfg)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("retention sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(ctx, cfg)
		}
	}
}

// runSweep performs one sweep and logs the outcome.
func (s *Service) runSweep(ctx context.Context, cfg SweepConfig) {
	start := time.Now()
	log := logging.FromContext(ctx)

	res, err := s.Sweep(ctx, s.now().Add(-cfg.Retention))
	if err != nil {
		log.Error("retention sweep failed", "error", err)
	}

	log.Info("retention sweep completed",
		"files_removed", res.FilesRemoved,
		"jobs_purged", res.JobsPurged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Sweep deletes regular files in the upload directory last modified before
// cutoff and purges job history recorded before cutoff. Files that vanish
// mid-sweep are ignored; other errors are joined and returned.
func (s *Service) Sweep(ctx context.Context, cutoff time.Time) (SweepResult, error) {
	var res SweepResult
	var errs []error

	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return res, fmt.Errorf("read upload dir: %w", err)
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.uploadDir, e.Name())); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		res.FilesRemoved++
	}

	purged, err := s.store.PurgeJobsBefore(ctx, cutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("purge jobs: %w", err))
	}
	res.JobsPurged = purged

	return res, errors.Join(errs...)
}
