package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/portfolio/internal/logging"
	"github.com/google/uuid"
)

// DefaultJobTimeout bounds one cleaning job, upload included.
const DefaultJobTimeout = 2 * time.Minute

// OutputPrefix is prepended to the stored upload name to name the cleaned file.
const OutputPrefix = "cleaned_"

// ServiceConfig configures a Service. Zero values fall back to defaults.
type ServiceConfig struct {
	UploadDir     string
	MaxConcurrent int
	MaxWait       time.Duration
	JobTimeout    time.Duration
}

// Service runs cleaning jobs for uploaded files and keeps their history.
type Service struct {
	uploadDir  string
	store      JobStore
	limiter    *JobLimiter
	jobTimeout time.Duration
	now        func() time.Time
}

// NewService creates the upload directory if needed and returns a Service
// that records jobs in store.
func NewService(store JobStore, cfg ServiceConfig) (*Service, error) {
	if store == nil {
		return nil, errors.New("job store is required")
	}
	if cfg.UploadDir == "" {
		return nil, errors.New("upload directory is required")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}

	return &Service{
		uploadDir:  cfg.UploadDir,
		store:      store,
		limiter:    NewJobLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		jobTimeout: cfg.JobTimeout,
		now:        time.Now,
	}, nil
}

// CleanFile reads inPath, cleans it and writes the result to outPath.
func CleanFile(ctx context.Context, inPath, outPath string) (Report, error) {
	in, err := ReadCSVFile(inPath)
	if err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	out, rep := Clean(in)

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	if err := WriteCSVFile(outPath, out); err != nil {
		return rep, err
	}
	return rep, nil
}

// CleanUpload stores an uploaded file, cleans it into a sibling file and
// records the run. The returned job describes the run even when the error is
// non-nil, unless the upload was rejected before a job started.
func (s *Service) CleanUpload(ctx context.Context, fileName string, r io.Reader) (*Job, error) {
	if fileName == "" {
		return nil, ErrNoFile
	}
	if !IsCSV(fileName) {
		return nil, fmt.Errorf("upload %s: %w", fileName, ErrNotCSV)
	}

	if !s.limiter.TryAcquire() {
		logging.FromContext(ctx).Info("waiting for a cleaning slot",
			"file", fileName,
			"active", s.limiter.ActiveCount(),
		)
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
	}
	defer s.limiter.Release()

	jobCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	start := s.now()
	job := Job{
		ID:         uuid.New().String(),
		FileName:   fileName,
		StoredName: storedName(fileName),
		IPAddress:  IPAddressFromContext(ctx),
		UserAgent:  UserAgentFromContext(ctx),
		CreatedAt:  start.UTC(),
	}
	jobLog := logging.WithFields(ctx, "job_id", job.ID)

	err := s.runJob(jobCtx, &job, r)

	job.Duration = s.now().Sub(start)
	if err != nil {
		job.Status = JobFailed
		job.Error = err.Error()
		job.OutputName = ""
	} else {
		job.Status = JobSucceeded
	}

	// History is best effort.
	if recErr := s.store.RecordJob(context.WithoutCancel(ctx), job); recErr != nil {
		jobLog.Error("record job failed", "error", recErr)
	}

	jobLog.Info("cleaning job finished",
		"file", job.FileName,
		"status", job.Status,
		"rows_in", job.Report.RowsIn,
		"rows_out", job.Report.RowsOut,
		"columns_dropped", job.Report.ColumnsDropped(),
		"duration_ms", job.Duration.Milliseconds(),
	)

	return &job, err
}

// runJob saves the upload and cleans it.
func (s *Service) runJob(ctx context.Context, job *Job, r io.Reader) error {
	inPath := filepath.Join(s.uploadDir, job.StoredName)

	n, err := saveUpload(inPath, r)
	job.BytesIn = n
	if err != nil {
		return err
	}

	job.OutputName = OutputPrefix + job.StoredName
	rep, err := CleanFile(ctx, inPath, filepath.Join(s.uploadDir, job.OutputName))
	job.Report = rep
	return err
}

// storedName derives a collision-free name inside the upload directory.
func storedName(fileName string) string {
	safe := SecureFilename(fileName)
	if !IsCSV(safe) {
		safe = "upload.csv"
	}
	return uuid.New().String() + "_" + safe
}

// saveUpload copies r into a new file at path and returns the bytes written.
func saveUpload(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("save upload: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return n, fmt.Errorf("save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return n, fmt.Errorf("save upload: %w", err)
	}
	return n, nil
}

// OutputPath resolves a download name to a file inside the upload directory.
// Only plain base names are accepted.
func (s *Service) OutputPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", ErrFileNotFound
	}

	path := filepath.Join(s.uploadDir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrFileNotFound
	}
	return path, nil
}

// UploadDir returns the directory uploads and cleaned files are stored in.
func (s *Service) UploadDir() string {
	return s.uploadDir
}

// RecentJobs returns the latest jobs, newest first.
func (s *Service) RecentJobs(ctx context.Context, limit int) ([]Job, error) {
	return s.store.RecentJobs(ctx, limit)
}

// recentScanLimit is how far back RecentJobsFrom looks for a client's runs.
const recentScanLimit = 200

// RecentJobsFrom returns up to limit of the latest jobs submitted from ip,
// newest first. An empty ip matches nothing.
func (s *Service) RecentJobsFrom(ctx context.Context, ip string, limit int) ([]Job, error) {
	if ip == "" || limit <= 0 {
		return nil, nil
	}

	jobs, err := s.store.RecentJobs(ctx, recentScanLimit)
	if err != nil {
		return nil, err
	}

	var mine []Job
	for _, j := range jobs {
		if j.IPAddress != ip {
			continue
		}
		mine = append(mine, j)
		if len(mine) == limit {
			break
		}
	}
	return mine, nil
}

// JobByOutput returns the job that produced the named cleaned file.
func (s *Service) JobByOutput(ctx context.Context, outputName string) (*Job, error) {
	return s.store.JobByOutput(ctx, outputName)
}

// JobStats returns aggregate history counters.
func (s *Service) JobStats(ctx context.Context) (JobStats, error) {
	return s.store.JobStats(ctx)
}

// LimiterStatus reports how many job slots are in use.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForJobs blocks until running jobs finish or ctx is done.
func (s *Service) WaitForJobs(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
