// Package identity talks to the external identity provider's admin API
// (user lookup and import). The OAuth consent flow itself lives in the
// oauth package; this client covers the server-to-server surface used
// during provisioning.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrUserNotFound reports that the provider holds no user for the
// email. This is the only lookup error provisioning may treat as the
// "create user" branch; everything else must surface as a failure.
var ErrUserNotFound = errors.New("identity: user not found")

// User is the provider-side user record, as far as this system cares.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Directory is the subset of the provider admin API used at login time.
type Directory interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// CreateUser imports a user with a non-interactive credential hash.
	// The credential is a placeholder: users always sign in through the
	// OAuth flow, never with this password.
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	endpoint := c.baseURL + "/v1/users?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: lookup %s: %w", email, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK {
		var u User
		if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
			return nil, fmt.Errorf("identity: decode user: %w", err)
		}
		return &u, nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var ae apiError
	_ = json.Unmarshal(b, &ae)
	if isNotFound(resp.StatusCode, ae.Code) {
		return nil, ErrUserNotFound
	}
	return nil, statusError(resp.StatusCode, ae.Code, "lookup")
}

func (c *Client) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	body, err := json.Marshal(map[string]string{
		"email":         email,
		"password_hash": passwordHash,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/users", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: create %s: %w", email, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var ae apiError
		_ = json.Unmarshal(b, &ae)
		return nil, statusError(resp.StatusCode, ae.Code, "create")
	}
	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("identity: decode user: %w", err)
	}
	return &u, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// isNotFound matches both a plain 404 and the provider's
// "user-not-found" error code on other 4xx statuses.
func isNotFound(status int, code string) bool {
	if status == http.StatusNotFound {
		return true
	}
	if status/100 != 4 {
		return false
	}
	return code == "user-not-found" || code == "auth/user-not-found"
}

func statusError(status int, code, op string) error {
	if code != "" {
		return fmt.Errorf("identity: %s failed: %s (http %d)", op, code, status)
	}
	return fmt.Errorf("identity: %s failed: http %d", op, status)
}

var _ Directory = (*Client)(nil)
