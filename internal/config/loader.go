package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Load reads configuration from environment variables, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with a custom variable lookup.
func LoadFrom(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// loadStruct populates struct fields from the environment, recursing into
// nested structs. Every missing required variable is reported, not just
// the first.
func loadStruct(v reflect.Value, lookup func(string) (string, bool)) error {
	t := v.Type()
	var errs []error

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal, lookup); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value := env(lookup, envName)
		if value == "" {
			if alt := field.Tag.Get("envAlt"); alt != "" {
				value = env(lookup, alt)
			}
		}

		if value == "" {
			if field.Tag.Get("required") == "true" {
				errs = append(errs, fmt.Errorf("required environment variable %s is not set", envName))
				continue
			}
			value = field.Tag.Get("default")
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", envName, value, err))
		}
	}

	return errors.Join(errs...)
}

func env(lookup func(string) (string, bool), name string) string {
	v, _ := lookup(name)
	return strings.TrimSpace(v)
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is usable and reports every
// problem at once.
func (c *Config) Validate() error {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		add("SERVER_READ_TIMEOUT and SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		add("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		add("SERVER_REQUEST_TIMEOUT must be positive")
	}

	// API
	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("API_BASE_URL (%q) must be an absolute http(s) URL", c.API.BaseURL)
	}
	if !strings.HasPrefix(c.API.Prefix, "/") {
		add("API_PREFIX (%q) must start with /", c.API.Prefix)
	}
	if c.API.Timeout <= 0 {
		add("API_TIMEOUT must be positive")
	}
	if c.API.FetchPageSize <= 0 {
		add("API_FETCH_PAGE_SIZE must be positive")
	}

	// Import
	if len(c.Import.AcceptedExtensions) == 0 {
		add("IMPORT_ACCEPTED_EXTENSIONS must list at least one extension")
	}
	for _, ext := range c.Import.AcceptedExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			add("IMPORT_ACCEPTED_EXTENSIONS entry %q must look like .csv", ext)
		}
	}
	if c.Import.MaxSizeMB <= 0 {
		add("IMPORT_MAX_SIZE_MB must be positive")
	}
	if c.Import.MaxConcurrent <= 0 {
		add("IMPORT_MAX_CONCURRENT must be positive")
	}
	if c.Import.MaxWaitTime <= 0 {
		add("IMPORT_MAX_WAIT_TIME must be positive")
	}
	if c.Import.Timeout <= 0 {
		add("IMPORT_TIMEOUT must be positive")
	}
	if c.Import.AutoCloseDelay <= 0 {
		add("IMPORT_AUTO_CLOSE_DELAY must be positive")
	}

	// Table
	if c.Table.PageSize <= 0 {
		add("TABLE_PAGE_SIZE must be positive")
	}
	if c.Table.MaxPageSize < c.Table.PageSize {
		add("TABLE_MAX_PAGE_SIZE (%d) must be >= TABLE_PAGE_SIZE (%d)", c.Table.MaxPageSize, c.Table.PageSize)
	}

	// Database, only when history persistence is enabled
	if c.Database.Enabled() {
		if c.Database.MaxConns <= 0 {
			add("DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			add("DB_MIN_CONNS must be non-negative")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			add("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.Database.MaxConns, c.Database.MinConns)
		}
	}

	// Rate limits
	if c.Rate.Enabled && (c.Rate.RequestsPerMinute <= 0 || c.Rate.ImportLimit <= 0) {
		add("RATE_LIMIT_REQUESTS_PER_MINUTE and RATE_LIMIT_IMPORT must be positive when rate limiting is enabled")
	}

	// Security
	if c.Security.SessionCookie == "" {
		add("SESSION_COOKIE_NAME must not be empty")
	}
	if c.Security.SessionTTL <= 0 {
		add("SESSION_TTL must be positive")
	}

	// History
	if c.History.Retention <= 0 {
		add("HISTORY_RETENTION must be positive")
	}
	if _, err := cron.ParseStandard(c.History.PruneSchedule); err != nil {
		add("HISTORY_PRUNE_SCHEDULE (%q) is not a valid schedule: %v", c.History.PruneSchedule, err)
	}
	if c.History.MaxEntries <= 0 {
		add("HISTORY_MAX_ENTRIES must be positive")
	}

	// Logging
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		add("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a representation safe for logs. Credentials and the
// database URL are masked.
func (c *Config) String() string {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q}, ", c.Server.Addr())
	fmt.Fprintf(&b, "API: {BaseURL: %q, Prefix: %q, User: %q, Password: %q}, ",
		c.API.BaseURL, c.API.Prefix, c.API.Username, mask(c.API.Password))
	fmt.Fprintf(&b, "Import: {Extensions: %v, MaxSizeMB: %d, MaxConcurrent: %d}, ",
		c.Import.AcceptedExtensions, c.Import.MaxSizeMB, c.Import.MaxConcurrent)
	fmt.Fprintf(&b, "Database: {URL: %q, MaxConns: %d}, ", mask(c.Database.URL), c.Database.MaxConns)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ", c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
