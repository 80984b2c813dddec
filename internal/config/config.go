// Package config loads dashboard settings from environment variables.
// Defaults cover a local setup; only the backend URL must be provided.
// Everything is validated on startup so misconfiguration fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Import   ImportConfig
	Table    TableConfig
	Database DatabaseConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	History  HistoryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including waiting for
	// in-flight imports to finish.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for ordinary requests.
	// Import uploads use Import.Timeout instead.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// APIConfig describes the insurance backend.
type APIConfig struct {
	// BaseURL is the backend origin (required).
	BaseURL string `env:"API_BASE_URL" envAlt:"COVERDESK_API_URL" required:"true"`

	Prefix         string `env:"API_PREFIX" default:"/api/v1"`
	CSRFCookie     string `env:"API_CSRF_COOKIE" default:"csrftoken"`
	CSRFHeader     string `env:"API_CSRF_HEADER" default:"X-CSRFToken"`
	CSRFEndpoint   string `env:"API_CSRF_ENDPOINT" default:"/auth/csrf/"`
	LoginEndpoint  string `env:"API_LOGIN_ENDPOINT" default:"/auth/login/"`
	LogoutEndpoint string `env:"API_LOGOUT_ENDPOINT" default:"/auth/logout/"`

	Timeout time.Duration `env:"API_TIMEOUT" default:"30s"`

	// FetchPageSize is the page_size sent when loading a collection.
	FetchPageSize int `env:"API_FETCH_PAGE_SIZE" default:"1000"`

	// Username and Password are used by the CLI only.
	Username string `env:"COVERDESK_API_USER"`
	Password string `env:"COVERDESK_API_PASSWORD"`
}

// ImportConfig holds bulk import settings.
type ImportConfig struct {
	// AcceptedExtensions is a comma-separated allowlist (default: .csv).
	AcceptedExtensions []string `env:"IMPORT_ACCEPTED_EXTENSIONS" default:".csv"`

	// MaxSizeMB is the largest accepted file in megabytes (default: 5).
	MaxSizeMB int64 `env:"IMPORT_MAX_SIZE_MB" default:"5"`

	// MaxConcurrent bounds uploads across all sessions (default: 5).
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long an upload waits for a slot (default: 30s).
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds one upload to the backend (default: 5m).
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"5m"`

	// AutoCloseDelay is how long a successful import stays visible.
	AutoCloseDelay time.Duration `env:"IMPORT_AUTO_CLOSE_DELAY" default:"2s"`
}

// TableConfig holds table view settings.
type TableConfig struct {
	PageSize    int `env:"TABLE_PAGE_SIZE" default:"10"`
	MaxPageSize int `env:"TABLE_MAX_PAGE_SIZE" default:"100"`
}

// DatabaseConfig holds the optional import history database.
// Without a URL, history is kept in memory.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a history database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// ImportLimit is requests per minute for import endpoints.
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// SecureCookies sets the Secure flag on the session cookie.
	SecureCookies bool `env:"SECURITY_SECURE_COOKIES" default:"false"`

	SessionCookie string        `env:"SESSION_COOKIE_NAME" default:"coverdesk_session"`
	SessionTTL    time.Duration `env:"SESSION_TTL" default:"12h"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// HistoryConfig holds import history retention.
type HistoryConfig struct {
	// Retention is how long records are kept (default: 90 days).
	Retention time.Duration `env:"HISTORY_RETENTION" default:"2160h"`

	// PruneSchedule is a cron expression or descriptor (default: @daily).
	PruneSchedule string `env:"HISTORY_PRUNE_SCHEDULE" default:"@daily"`

	// MaxEntries caps the in-memory store.
	MaxEntries int `env:"HISTORY_MAX_ENTRIES" default:"1000"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
