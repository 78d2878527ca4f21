// Package config loads the server configuration from environment variables.
// Every setting has a default except the database URL, which is required
// only when rows are stored in PostgreSQL. Validate reports every problem
// at once so a bad deployment fails on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Store     StoreConfig
	Clipboard ClipboardConfig
	Transfer  TransferConfig
	Schema    SchemaConfig
	Audit     AuditConfig
	Security  SecurityConfig
	Rate      RateLimitConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including draining transfers.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Required when STORE_BACKEND=postgres.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// StoreConfig selects where rows and audit entries live.
type StoreConfig struct {
	// Backend is memory or postgres (default: memory)
	Backend string `env:"STORE_BACKEND" default:"memory"`

	// SeedRows loads the schema file's rows into empty tables at startup.
	SeedRows bool `env:"STORE_SEED_ROWS" default:"true"`
}

// Clipboard backends.
const (
	// ClipboardRequest uses only the text sent with each request.
	ClipboardRequest = "request"
	// ClipboardSession keeps a server-side clipboard per browser session.
	ClipboardSession = "session"
	// ClipboardSystem uses the host clipboard. Single-user desktops only.
	ClipboardSystem = "system"
)

// ClipboardConfig holds clipboard and value formatting settings.
type ClipboardConfig struct {
	// Backend is request, session or system (default: session)
	Backend string `env:"CLIPBOARD_BACKEND" default:"session"`

	// SessionTTL is how long an idle session clipboard is kept (default: 30m)
	SessionTTL time.Duration `env:"CLIPBOARD_SESSION_TTL" default:"30m"`

	// SweepInterval is how often expired sessions are evicted (default: 1m)
	SweepInterval time.Duration `env:"CLIPBOARD_SWEEP_INTERVAL" default:"1m"`

	// CookieName names the session cookie (default: gridclip_session)
	CookieName string `env:"CLIPBOARD_COOKIE_NAME" default:"gridclip_session"`

	// TimeZone is the IANA zone dates are rendered in (default: UTC)
	TimeZone string `env:"CLIPBOARD_TIME_ZONE" default:"UTC"`
}

// Location resolves TimeZone.
func (c *ClipboardConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// TransferConfig holds transfer concurrency settings.
type TransferConfig struct {
	// MaxConcurrent is the maximum number of parallel transfers (default: 16)
	MaxConcurrent int `env:"TRANSFER_MAX_CONCURRENT" default:"16"`

	// MaxWaitTime is how long to wait for a transfer slot (default: 5s)
	MaxWaitTime time.Duration `env:"TRANSFER_MAX_WAIT_TIME" default:"5s"`

	// Timeout bounds a single transfer (default: 10s)
	Timeout time.Duration `env:"TRANSFER_TIMEOUT" default:"10s"`
}

// SchemaConfig locates the table schema file.
type SchemaConfig struct {
	Path string `env:"SCHEMA_PATH" default:"schema.yaml"`

	// Watch reloads the schema when the file changes (default: true)
	Watch bool `env:"SCHEMA_WATCH" default:"true"`
}

// AuditConfig holds audit log retention settings.
type AuditConfig struct {
	// RetentionDays is how long audit entries are kept (default: 90)
	RetentionDays int `env:"AUDIT_RETENTION_DAYS" default:"90"`

	// CheckInterval is how often old entries are pruned (default: 24h)
	CheckInterval time.Duration `env:"AUDIT_CHECK_INTERVAL" default:"24h"`

	// MemoryEntries caps the in-memory audit log (default: 10000)
	MemoryEntries int `env:"AUDIT_MEMORY_ENTRIES" default:"10000"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enforces X-API-Key on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// SecureCookies marks the session cookie Secure (default: false)
	SecureCookies bool `env:"SECURE_COOKIES" default:"false"`
}

// RateLimitConfig holds per-IP request rate limiting settings.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// Requests allowed per Window from one client IP (default: 300)
	Requests int           `env:"RATE_LIMIT_REQUESTS" default:"300"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" default:"1m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" default:"true"`
	Path    string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
