package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/JonMunkholm/coverdesk/internal/logging"
)

var errNoCSRFToken = errors.New("fetch csrf token: no token in response")

// needsCSRF reports whether method changes server state.
func needsCSRF(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// CSRFToken returns the token for mutating requests: the CSRF cookie if
// the backend set one, else the cached token, else a freshly fetched one.
// Concurrent callers without a token share one fetch.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	if tok := c.cookie(c.cfg.CSRFCookie); tok != "" {
		return tok, nil
	}

	if tok := c.cachedCSRF(); tok != "" {
		return tok, nil
	}

	// The fetch outlives any single caller; it is bounded by the client
	// timeout instead.
	ch := c.csrfGroup.DoChan("csrf", func() (any, error) {
		return c.loadCSRF(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Client) cachedCSRF() string {
	c.csrfMu.RLock()
	defer c.csrfMu.RUnlock()
	return c.csrfToken
}

// loadCSRF runs inside the single flight. A fetch that finished after the
// caller checked the cache has already stored a token, so it is reused.
func (c *Client) loadCSRF(ctx context.Context) (string, error) {
	if tok := c.cachedCSRF(); tok != "" {
		return tok, nil
	}
	return c.fetchCSRF(ctx)
}

func (c *Client) fetchCSRF(ctx context.Context) (string, error) {
	log := logging.FromContext(ctx)
	c.metrics.CSRFFetched()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(c.cfg.CSRFEndpoint), nil)
	if err != nil {
		return "", fmt.Errorf("build csrf request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(http.MethodGet, 0, time.Since(start))
		log.Error("csrf token fetch failed", "error", err)
		return "", fmt.Errorf("fetch csrf token: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(http.MethodGet, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read csrf response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newAPIError(resp, body)
	}

	tok := c.cookie(c.cfg.CSRFCookie)
	if tok == "" {
		tok = firstString(body, "csrfToken", "csrf_token", "token")
	}
	if tok == "" {
		return "", errNoCSRFToken
	}

	c.csrfMu.Lock()
	c.csrfToken = tok
	c.csrfMu.Unlock()

	log.Debug("csrf token fetched")
	return tok, nil
}

// firstString returns the first non-empty string found at paths.
func firstString(body []byte, paths ...string) string {
	for _, p := range paths {
		if v := gjson.GetBytes(body, p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func (c *Client) clearCSRF() {
	c.csrfMu.Lock()
	c.csrfToken = ""
	c.csrfMu.Unlock()
}
