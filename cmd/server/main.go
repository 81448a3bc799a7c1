package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/portfolio/internal/config"
	"github.com/JonMunkholm/portfolio/internal/core"
	"github.com/JonMunkholm/portfolio/internal/database"
	"github.com/JonMunkholm/portfolio/internal/logging"
	"github.com/JonMunkholm/portfolio/internal/mail"
	"github.com/JonMunkholm/portfolio/internal/portfolio"
	"github.com/JonMunkholm/portfolio/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"database", database.Backend(cfg.Database.URL),
		"upload_dir", cfg.Upload.Dir,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"mail_enabled", cfg.Mail.Enabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	// Open job history store
	ctx := context.Background()
	store, err := database.Open(ctx, database.Options{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		MemoryLimit:     cfg.Database.HistoryLimit,
	})
	if err != nil {
		slog.Error("failed to open job store", "url", database.Redact(cfg.Database.URL), "error", err)
		os.Exit(1)
	}
	defer store.Close()

	service, err := core.NewService(store, core.ServiceConfig{
		UploadDir:     cfg.Upload.Dir,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		JobTimeout:    cfg.Upload.JobTimeout,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	slog.Info("projects registered", "count", portfolio.Count())

	mailer := mail.New(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.User,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		To:       cfg.Mail.To,
	})

	server, err := web.NewServer(service, mailer, cfg)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Background jobs stop when jobCtx is cancelled
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	go service.StartSweeper(jobCtx, core.SweepConfig{
		Retention: cfg.Upload.Retention,
		Interval:  cfg.Upload.SweepInterval,
	})
	go server.RunLimiterCleanup(jobCtx)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Wait for cleaning jobs still running (with timeout)
		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for cleaning jobs to complete", "active", status.Active)
			if err := service.WaitForJobs(shutdownCtx); err != nil {
				slog.Warn("cleaning jobs did not complete in time", "error", err)
			} else {
				slog.Info("all cleaning jobs completed")
			}
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		cancelJobs()
		store.Close()
		os.Exit(1)
	}

	<-stopped
	slog.Info("server stopped")
}
