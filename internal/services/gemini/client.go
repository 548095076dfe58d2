package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL       = "https://generativelanguage.googleapis.com/v1beta"
	defaultUploadURL     = "https://generativelanguage.googleapis.com/upload/v1beta/files"
	defaultHTTPTimeout   = 120 * time.Second
	defaultUploadTimeout = 10 * time.Minute
	apiKeyHeader         = "x-goog-api-key"
)

// Config captures the runtime settings required to talk to the service.
type Config struct {
	APIKey        string
	BaseURL       string
	UploadURL     string
	Timeout       time.Duration
	UploadTimeout time.Duration
}

// Client wraps the Gemini REST API.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	uploadClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for every call.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
			c.uploadClient = client
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.UploadURL = strings.TrimRight(strings.TrimSpace(cfg.UploadURL), "/")
	if cfg.UploadURL == "" {
		cfg.UploadURL = defaultUploadURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}
	client := &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		uploadClient: &http.Client{Timeout: cfg.UploadTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type apiErrorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError is an HTTP failure returned by the service.
type APIError struct {
	Op         string
	StatusCode int
	Status     string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "gemini %s: http %d", e.Op, e.StatusCode)
	if e.Status != "" {
		b.WriteString(" ")
		b.WriteString(e.Status)
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

// Kind reports the classified failure kind for this response.
func (e *APIError) Kind() ErrorKind {
	return kindForStatus(e.StatusCode)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if c.cfg.APIKey != "" {
		req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	}
	return req, nil
}

// doJSON sends a request with an optional JSON payload and decodes the
// response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, op, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("gemini %s: encode body: %w", op, err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("gemini %s: new request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gemini %s: http error: %w", op, err)
	}
	defer resp.Body.Close()
	return decodeResponse(op, resp, out)
}

func decodeResponse(op string, resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gemini %s: read body: %w", op, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(op, resp, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("gemini %s: decode response: %w", op, err)
	}
	return nil
}

func newAPIError(op string, resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
	apiErr.RetryAfter, _ = parseRetryAfter(resp.Header.Get("Retry-After"))
	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		apiErr.Status = envelope.Error.Status
		return apiErr
	}
	apiErr.Message = summarizePayloadSnippet(string(body))
	return apiErr
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ""
	}
	replacer := strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
	clean := strings.Join(strings.Fields(replacer.Replace(trimmed)), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
