// Package apiclient is the dashboard's HTTP client for the insurance backend.
//
// A Client holds one backend session: its cookies, its cached CSRF token
// and the hooks used when the backend rejects the session. Requests are
// made through the generic [Request] function and its Get/Post/Put/Patch/
// Delete wrappers, which decode the body into the caller's type.
//
// Nothing is retried. Mutating requests carry the CSRF token; when no
// token is known, concurrent callers share a single token fetch.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/coverdesk/internal/metrics"
)

// ErrInvalidBaseURL is returned by New for a missing or malformed base URL.
var ErrInvalidBaseURL = errors.New("invalid API base URL")

// Session is the local record of a signed-in user.
type Session interface {
	// Clear forgets the user's authentication markers.
	Clear()
}

// SessionFunc adapts a function to Session.
type SessionFunc func()

func (f SessionFunc) Clear() { f() }

// Navigator moves the user to another dashboard route.
type Navigator interface {
	CurrentPath(ctx context.Context) string
	Navigate(ctx context.Context, path string)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. The client's cookie jar
// is replaced by the session jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.http = &cp
	}
}

// WithSession sets the session cleared on authentication failures.
func WithSession(s Session) Option {
	return func(c *Client) { c.session = s }
}

// WithNavigator sets where authentication failures redirect the user.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.nav = n }
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client talks to the backend on behalf of one session.
type Client struct {
	cfg     Config
	base    *url.URL
	http    *http.Client
	jar     *sessionJar
	session Session
	nav     Navigator
	metrics *metrics.Metrics

	csrfMu    sync.RWMutex
	csrfToken string
	csrfGroup singleflight.Group
}

// New creates a client for the backend described by cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	jar, err := newSessionJar()
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:  cfg,
		base: base,
		http: &http.Client{Timeout: cfg.Timeout},
		jar:  jar,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Jar = c.jar
	return c, nil
}

// Config returns the client's configuration with defaults applied.
func (c *Client) Config() Config {
	return c.cfg
}

// URL returns the absolute URL for endpoint, normalized like a request.
func (c *Client) URL(endpoint string) string {
	path, rawQuery, _ := strings.Cut(endpoint, "?")
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + c.normalize(path)
	u.RawQuery = rawQuery
	return u.String()
}

// normalize ensures a leading slash and the API prefix.
func (c *Client) normalize(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	prefix := c.cfg.APIPrefix
	if endpoint == prefix || strings.HasPrefix(endpoint, prefix+"/") {
		return endpoint
	}
	return prefix + endpoint
}

// Reset drops every cookie and the cached CSRF token, ending the backend
// session locally.
func (c *Client) Reset() {
	c.jar.Reset()
	c.clearCSRF()
}

// handleAuthFailure clears the session and sends the user to the login
// route, unless they are already on it.
func (c *Client) handleAuthFailure(ctx context.Context) {
	c.clearCSRF()
	if c.session != nil {
		c.session.Clear()
	}
	if c.nav == nil {
		return
	}
	if c.nav.CurrentPath(ctx) == c.cfg.LoginRoute {
		return
	}
	c.nav.Navigate(ctx, c.cfg.LoginRoute)
}

// sessionJar is a cookie jar that can be emptied.
type sessionJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newSessionJar() (*sessionJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &sessionJar{jar: jar}, nil
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

func (j *sessionJar) Reset() {
	// cookiejar.New(nil) cannot fail.
	jar, _ := cookiejar.New(nil)
	j.mu.Lock()
	j.jar = jar
	j.mu.Unlock()
}

// cookie returns the named cookie's value for the backend origin.
func (c *Client) cookie(name string) string {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}
