// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Site     SiteConfig
	Upload   UploadConfig
	Database DatabaseConfig
	Mail     MailConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// SiteConfig holds settings for the pages themselves.
type SiteConfig struct {
	// OwnerName appears in titles and the footer
	OwnerName string `env:"SITE_OWNER_NAME" default:"Jon Munkholm"`

	// SecretKey signs flash message cookies. When empty a random key is
	// generated at startup and flashes do not survive restarts.
	SecretKey string `env:"SITE_SECRET_KEY" envAlt:"FLASK_SECRET"`

	// SecureCookies sets the Secure attribute on cookies (default: false)
	SecureCookies bool `env:"SITE_SECURE_COOKIES" default:"false"`
}

// UploadConfig holds cleaning demo settings.
type UploadConfig struct {
	// Dir is where uploads and cleaned files are stored (default: uploads)
	Dir string `env:"UPLOAD_DIR" default:"uploads"`

	// MaxFileSize is the maximum allowed file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the maximum number of parallel cleaning jobs (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a job slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// JobTimeout is the maximum duration for a single cleaning job (default: 2m)
	JobTimeout time.Duration `env:"UPLOAD_JOB_TIMEOUT" default:"2m"`

	// Retention is how long uploads, cleaned files and job history are kept (default: 24h)
	Retention time.Duration `env:"UPLOAD_RETENTION" default:"24h"`

	// SweepInterval is how often expired files are removed (default: 1h)
	SweepInterval time.Duration `env:"UPLOAD_SWEEP_INTERVAL" default:"1h"`
}

// DatabaseConfig holds job history storage settings.
type DatabaseConfig struct {
	// URL selects the job history store: postgres://..., sqlite://path,
	// or empty for in-memory history.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// HistoryLimit caps the in-memory history (default: 1000)
	HistoryLimit int `env:"DB_MEMORY_HISTORY_LIMIT" default:"1000"`
}

// MailConfig holds SMTP settings for the contact form.
type MailConfig struct {
	// Host is the SMTP server (default: smtp.gmail.com)
	Host string `env:"SMTP_HOST" envAlt:"MAIL_SERVER" default:"smtp.gmail.com"`

	// Port is the SMTP submission port (default: 587)
	Port int `env:"SMTP_PORT" envAlt:"MAIL_PORT" default:"587"`

	// User is the SMTP login and default sender
	User string `env:"SMTP_USER" envAlt:"EMAIL_USER"`

	// Password is the SMTP password or app password
	Password string `env:"SMTP_PASS" envAlt:"EMAIL_PASS"`

	// From overrides the sender address (default: User)
	From string `env:"MAIL_FROM"`

	// To is where contact messages are delivered (default: User)
	To string `env:"MAIL_TO" envAlt:"TO_EMAIL"`

	// SendTimeout bounds one delivery attempt (default: 15s)
	SendTimeout time.Duration `env:"MAIL_SEND_TIMEOUT" default:"15s"`
}

// Enabled reports whether the contact form can send mail.
func (m *MailConfig) Enabled() bool {
	return m.Host != "" && m.User != "" && m.Password != ""
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// UploadLimit is requests per minute for the cleaning demo upload (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`

	// ContactLimit is requests per minute for the contact form (default: 5)
	ContactLimit int `env:"RATE_LIMIT_CONTACT" default:"5"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
