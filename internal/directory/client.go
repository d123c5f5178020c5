// Package directory talks to the external user directory and profile service.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer credential for outgoing calls.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function into a TokenSource.
type TokenFunc func() string

// Token satisfies TokenSource.
func (f TokenFunc) Token() string {
	if f == nil {
		return ""
	}
	return f()
}

// Client wraps interactions with the directory API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient constructs a new client. A zero timeout leaves calls unbounded so
// that a hung request keeps guards in their loading state.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResult
	err := c.do(ctx, "login", http.MethodPost, "/auth/login", body, &out, false)
	if errors.Is(err, ErrUnauthorized) {
		return LoginResult{}, ErrInvalidLogin
	}
	if err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

// ListUsers fetches all users.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, "fetch users", http.MethodGet, "/users", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUserRole replaces a user's role and permissions.
func (c *Client) UpdateUserRole(ctx context.Context, userID string, update RoleUpdate) (RoleUpdateResult, error) {
	var out RoleUpdateResult
	path := "/users/" + url.PathEscape(userID) + "/role"
	if err := c.do(ctx, "update role", http.MethodPut, path, update, &out, true); err != nil {
		return RoleUpdateResult{}, err
	}
	if out.ID == "" {
		out.ID = userID
	}
	return out, nil
}

// FetchProfile loads a user's own profile.
func (c *Client) FetchProfile(ctx context.Context, userID string) (Profile, error) {
	var out Profile
	path := "/users/" + url.PathEscape(userID) + "/profile"
	if err := c.do(ctx, "fetch profile", http.MethodGet, path, nil, &out, true); err != nil {
		return Profile{}, err
	}
	if out.ID == "" {
		out.ID = userID
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any, authenticated bool) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("directory: %s: encode: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("directory: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return &RejectedError{Op: op, Status: resp.StatusCode}
	case resp.StatusCode >= 500:
		return &NetworkError{Op: op, Status: resp.StatusCode}
	case resp.StatusCode >= 400:
		return &RejectedError{Op: op, Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
