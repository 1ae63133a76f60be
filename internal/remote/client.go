// Package remote is a thin client for the authoritative ordering
// service. It wraps the documented JSON-over-HTTP endpoints, attaches
// the bearer credential, and normalizes failures into two distinguishable
// classes: NetworkError (transport never delivered a response) and
// APIError (the service rejected the request).
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satchel-app/satchel/internal/logging"
)

// DefaultTimeout bounds every request. A call that does not return
// within this window surfaces as a NetworkError, never a hang.
const DefaultTimeout = 15 * time.Second

// Client talks to the remote ordering service.
//
// The bearer token is the only mutable state; it is replaced wholesale
// on login/logout and read-only for the duration of any call.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// NewClientWithTimeout creates a client with a custom request timeout.
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the bearer credential after a successful login.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken drops the bearer credential on logout.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer credential ("" when logged out).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// errorBody is the service's uniform rejection payload.
type errorBody struct {
	Error string `json:"error"`
}

// do executes one JSON request/response round trip.
// body may be nil; out may be nil when the response body is irrelevant.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	logging.FromContext(ctx).Debug("remote call",
		zap.String("op", op), zap.String("method", method), zap.String("url", url))

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.rejection(op, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}

// doMultipart uploads a file field plus string fields as multipart form
// data. Used for image uploads, which the service takes as multipart
// rather than JSON.
func (c *Client) doMultipart(ctx context.Context, op, path, fieldName, fileName string, file io.Reader, fields map[string]string, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(fieldName, fileName)
	if err != nil {
		return fmt.Errorf("%s: create form file: %w", op, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("%s: copy file: %w", op, err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("%s: write field %s: %w", op, k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%s: finalize form: %w", op, err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.rejection(op, resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}

// authorize attaches the bearer token when one is held. Login and
// register run before any token exists, so they go out bare.
func (c *Client) authorize(req *http.Request) {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// rejection turns an error-status response into an APIError, surfacing
// the service's own message when the body carries one.
func (c *Client) rejection(op string, resp *http.Response) error {
	var body errorBody
	// Best effort: a malformed error body still yields a usable APIError.
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
	return &APIError{Op: op, StatusCode: resp.StatusCode, Message: body.Error}
}
