// Package apiclient is the HTTP client for the CRM REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// Client talks to the CRM API. Requests to protected routes are authorised
// with the bearer token supplied by the configured oauth2.TokenSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authClient *http.Client
	tokens     oauth2.TokenSource
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenSource sets where bearer tokens for protected routes come from.
func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = ts
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}

	if c.tokens != nil {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.authClient = &http.Client{
			Timeout:   c.httpClient.Timeout,
			Transport: &oauth2.Transport{Source: c.tokens, Base: base},
		}
	}
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, c.httpClient, http.MethodPost, PathLogin, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup registers a new account. It does not log the user in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	var resp SignupResponse
	if err := c.do(ctx, c.httpClient, http.MethodPost, PathSignup, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout revokes the refresh token server-side.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	hc, err := c.authorised()
	if err != nil {
		return err
	}
	return c.do(ctx, hc, http.MethodPost, PathLogout, LogoutRequest{RefreshToken: refreshToken}, nil)
}

// LeadsCount returns the number of leads.
func (c *Client) LeadsCount(ctx context.Context) (int, error) {
	return c.count(ctx, PathLeadsCount)
}

// EmployeesCount returns the number of employees.
func (c *Client) EmployeesCount(ctx context.Context) (int, error) {
	return c.count(ctx, PathEmployeesCount)
}

// CreateLead adds a lead. Requires a session.
func (c *Client) CreateLead(ctx context.Context, req LeadRequest) error {
	hc, err := c.authorised()
	if err != nil {
		return err
	}
	return c.do(ctx, hc, http.MethodPost, PathLeads, req, nil)
}

// CreateEmployee adds an employee. Requires a session.
func (c *Client) CreateEmployee(ctx context.Context, req EmployeeRequest) error {
	hc, err := c.authorised()
	if err != nil {
		return err
	}
	return c.do(ctx, hc, http.MethodPost, PathEmployees, req, nil)
}

func (c *Client) count(ctx context.Context, path string) (int, error) {
	var resp CountResponse
	if err := c.do(ctx, c.httpClient, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) authorised() (*http.Client, error) {
	if c.authClient == nil {
		return nil, fmt.Errorf("[apiclient] no token source configured")
	}
	return c.authClient, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[apiclient %s %s] encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("[apiclient %s %s] new request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("[apiclient %s %s] %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("[apiclient %s %s] decode response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return apiErr
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return apiErr
	}
	apiErr.Payload = payload
	if msg, ok := payload["message"].(string); ok {
		apiErr.Message = msg
	}
	if msg, ok := payload["error"].(string); ok {
		apiErr.ErrorText = msg
	}
	return apiErr
}
