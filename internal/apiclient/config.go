package apiclient

import "time"

const (
	DefaultAPIPrefix      = "/api/v1"
	DefaultCSRFCookie     = "csrftoken"
	DefaultCSRFHeader     = "X-CSRFToken"
	DefaultCSRFEndpoint   = "/auth/csrf/"
	DefaultLoginEndpoint  = "/auth/login/"
	DefaultLogoutEndpoint = "/auth/logout/"
	DefaultLoginRoute     = "/login"
	DefaultTimeout        = 30 * time.Second
)

// Config describes the backend API.
type Config struct {
	// BaseURL is the backend origin, e.g. "https://api.example.com".
	BaseURL string

	// APIPrefix is prepended to every endpoint that does not already
	// start with it.
	APIPrefix string

	CSRFCookie     string // cookie holding the CSRF token
	CSRFHeader     string // header the token is echoed on
	CSRFEndpoint   string // endpoint that issues a token
	LoginEndpoint  string // auth failures from this endpoint are not redirected
	LogoutEndpoint string
	LoginRoute     string // dashboard route users are sent to on auth failure

	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.APIPrefix == "" {
		c.APIPrefix = DefaultAPIPrefix
	}
	if c.CSRFCookie == "" {
		c.CSRFCookie = DefaultCSRFCookie
	}
	if c.CSRFHeader == "" {
		c.CSRFHeader = DefaultCSRFHeader
	}
	if c.CSRFEndpoint == "" {
		c.CSRFEndpoint = DefaultCSRFEndpoint
	}
	if c.LoginEndpoint == "" {
		c.LoginEndpoint = DefaultLoginEndpoint
	}
	if c.LogoutEndpoint == "" {
		c.LogoutEndpoint = DefaultLogoutEndpoint
	}
	if c.LoginRoute == "" {
		c.LoginRoute = DefaultLoginRoute
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
