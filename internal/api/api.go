// Backend gateway for the review API.
//
// Every outbound call to the review backend flows through [Client.Request],
// which centralizes bearer attachment, status classification, and expiry
// handling so call sites get uniform auth behavior.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/filmsage/filmsage/internal/shared"
	"golang.org/x/oauth2"
)

// LoginPath is the navigation target emitted when a session expires mid-request.
const LoginPath = "/login"

// StatusError is a non-2xx backend response, carrying the server-provided
// message and the numeric status.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("API error (status %d)", e.Status)
}

// Unwrap maps the status onto the shared sentinel taxonomy so callers can
// classify failures with errors.Is.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return shared.ErrInvalidCredentials
	case e.Status == http.StatusForbidden:
		return shared.ErrForbidden
	case e.Status == http.StatusNotFound:
		return shared.ErrNotFound
	case e.Status == http.StatusConflict:
		return shared.ErrConflict
	case e.Status >= 500:
		return shared.ErrServerError
	default:
		return shared.ErrAPIRequest
	}
}

// Client is the gateway for all review backend calls.
//
// Credentials come from an [oauth2.TokenSource] (backed by the durable session
// store); a source error is treated as "no token" and the request proceeds
// unauthenticated. A 401 on a non-auth endpoint expires the session: the
// expiry hook runs exactly once per request and the caller receives
// [shared.ErrAuthRequired].
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	timeout    time.Duration
	logger     *log.Logger

	// onAuthExpired tears down the session and emits the navigation intent.
	// Decouples the HTTP layer from both the session manager and a concrete
	// navigation mechanism.
	onAuthExpired func(target string)
}

// ClientOpts contains configuration options for creating a Client.
type ClientOpts struct {
	BaseURL       string
	HTTPClient    *http.Client
	Tokens        oauth2.TokenSource
	Timeout       time.Duration
	Logger        *log.Logger
	OnAuthExpired func(target string)
}

// NewClient creates a new backend gateway.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:3000"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		httpClient:    opts.HTTPClient,
		tokens:        opts.Tokens,
		timeout:       opts.Timeout,
		logger:        opts.Logger,
		onAuthExpired: opts.OnAuthExpired,
	}
}

// IsAuthEndpoint reports whether the endpoint performs authentication itself.
// Auth endpoints never carry a bearer token, and a 401 from them means bad
// credentials rather than an expired session.
func IsAuthEndpoint(endpoint string) bool {
	return strings.Contains(endpoint, "/login") || strings.Contains(endpoint, "/register")
}

// RequestOptions carries per-call overrides for [Client.Request].
type RequestOptions struct {
	// Headers are merged over the defaults; the caller wins on conflict.
	Headers http.Header
}

// Request issues an HTTP call against the backend and returns the parsed body.
//
// Expected failure modes never escape as panics or raw transport errors:
// network failures map to [shared.ErrConnection], non-2xx responses to a
// [*StatusError] carrying the server message and numeric status.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any, opts *RequestOptions) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	authEndpoint := IsAuthEndpoint(endpoint)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", shared.GenerateID())

	if !authEndpoint && c.tokens != nil {
		if token, err := c.tokens.Token(); err == nil && token.AccessToken != "" {
			token.SetAuthHeader(req)
		} else if err != nil {
			c.logger.Debug("no stored credential, proceeding unauthenticated", "endpoint", endpoint)
		}
	}

	if opts != nil {
		for key, values := range opts.Headers {
			req.Header.Del(key)
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrConnection, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !authEndpoint {
		c.logger.Warn("session expired during request", "endpoint", endpoint)
		if c.onAuthExpired != nil {
			c.onAuthExpired(LoginPath)
		}
		return nil, fmt.Errorf("%w: session expired", shared.ErrAuthRequired)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Message: serverMessage(data)}
	}

	return json.RawMessage(data), nil
}

// Get performs a GET request to the specified endpoint.
func (c *Client) Get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, endpoint, nil, nil)
}

// Post performs a POST request with the given JSON-encodable body.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, endpoint, body, nil)
}

// Put performs a PUT request with the given JSON-encodable body.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, endpoint, body, nil)
}

// Delete performs a DELETE request to the specified endpoint.
func (c *Client) Delete(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodDelete, endpoint, nil, nil)
}

// serverMessage extracts the error message the backend placed in the body.
func serverMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return ""
}
