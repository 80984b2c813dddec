package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
)

// Credentials are posted to the login endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login signs in to the backend. The session cookie lands in the client's
// jar. A rejected login returns an *APIError and never redirects.
func (c *Client) Login(ctx context.Context, creds Credentials) (json.RawMessage, error) {
	// A stale token from a previous session would be rejected.
	c.clearCSRF()

	resp, err := Post[json.RawMessage](ctx, c, c.cfg.LoginEndpoint, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return resp.Data, nil
}

// Logout ends the backend session and forgets all local session state.
// Local state is cleared even when the backend call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.Reset()

	if _, err := Post[json.RawMessage](ctx, c, c.cfg.LogoutEndpoint, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
