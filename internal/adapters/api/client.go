// Package api is the typed client of the external PHP API. Every call names an
// operation; every response is a JSON envelope {status, message, data}.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eventdesk/internal/adapters/http/metrics"
)

// StatusSuccess is the envelope status of an accepted request.
const StatusSuccess = "success"

// DefaultTimeout bounds each API round trip when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// ErrUnexpected is wrapped when a response cannot be decoded as an envelope.
var ErrUnexpected = errors.New("unexpected API response")

// Error is an API refusal: a well-formed envelope whose status is not success.
type Error struct {
	Operation string
	Message   string
}

// Error implements error.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Operation + ": request was refused"
	}
	return e.Operation + ": " + e.Message
}

// Config locates the API.
type Config struct {
	BaseURL    string
	ImageURL   string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; tests inject httptest clients
}

// Client calls the PHP API.
type Client struct {
	baseURL  string
	imageURL string
	http     *http.Client
}

// New creates a Client.
// PRE: cfg.BaseURL is an absolute URL
// POST: every request is bounded by cfg.Timeout (or DefaultTimeout)
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "?"),
		imageURL: cfg.ImageURL,
		http:     hc,
	}
}

// envelope is the common response wrapper. Data is decoded per operation.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// postForm sends operation and fields as an urlencoded POST.
func (c *Client) postForm(ctx context.Context, token, operation string, fields map[string]string, dst any) error {
	form := url.Values{}
	form.Set("operation", operation)
	for k, v := range fields {
		form.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, token, operation, dst)
}

// get sends operation and params as query parameters.
func (c *Client) get(ctx context.Context, token, operation string, params map[string]string, dst any) error {
	q := url.Values{}
	q.Set("operation", operation)
	for k, v := range params {
		q.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", operation, err)
	}
	return c.do(req, token, operation, dst)
}

// postFile sends a multipart upload with a single file part named "file".
func (c *Client) postFile(ctx context.Context, token, operation, filename string, content io.Reader, fields map[string]string, dst any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("operation", operation); err != nil {
		return fmt.Errorf("%s: build upload: %w", operation, err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("%s: build upload: %w", operation, err)
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("%s: build upload: %w", operation, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("%s: read upload: %w", operation, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%s: build upload: %w", operation, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", operation, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, token, operation, dst)
}

// do executes req and decodes the envelope's data into dst (which may be nil).
// POST: returns nil, *Error for a refusal, or an error wrapping the transport
// failure or ErrUnexpected
func (c *Client) do(req *http.Request, token, operation string, dst any) (err error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	outcome := "error"
	defer func() {
		elapsed := time.Since(start)
		metrics.UpstreamCallsTotal.WithLabelValues(operation, outcome).Inc()
		metrics.UpstreamCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
		level := slog.LevelDebug
		if outcome == "error" {
			level = slog.LevelWarn
		}
		attrs := []any{"operation", operation, "method", req.Method, "outcome", outcome,
			"duration_ms", float64(elapsed.Microseconds()) / 1000.0}
		if err != nil {
			attrs = append(attrs, "error", err)
		}
		slog.Log(req.Context(), level, "upstream_call", attrs...)
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", operation, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Status == "" {
		return fmt.Errorf("%s: %w (HTTP %d)", operation, ErrUnexpected, resp.StatusCode)
	}
	if env.Status != StatusSuccess {
		outcome = "refused"
		return &Error{Operation: operation, Message: env.Message}
	}
	if dst != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			return fmt.Errorf("%s: decode data: %w: %v", operation, ErrUnexpected, err)
		}
	}
	outcome = "success"
	return nil
}

// Message returns a user-facing message for err: the API's own message for
// refusals, a generic line otherwise.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "The service is unavailable right now. Please try again."
}
