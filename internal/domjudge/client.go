package domjudge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/contest-provisioner/internal/observability"
)

// maxBodyBytes caps how much of a response body is buffered.
const maxBodyBytes = 8 << 20

// Response is a fully buffered reply from the admin API.
type Response struct {
	StatusCode int
	Body       []byte
}

// Text returns the body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("empty response body")
	}
	return json.Unmarshal(r.Body, v)
}

// TransportError marks a call that never produced an HTTP response:
// connection failures, timeouts and unreadable bodies.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	// Transport overrides the HTTP transport, e.g. to target an in-process sandbox.
	Transport http.RoundTripper
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

// Client is an authenticated session against the judge's admin API.
// Every call is bounded by the configured timeout.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewClient builds a client using HTTP Basic credentials.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		username: opts.Username,
		password: opts.Password,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// Get issues a GET request against path, relative to the base URL.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// PostJSON issues a POST with body encoded as JSON.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	metricPath := stripQuery(path)
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordError(metricPath, method, "transport")
		c.logger.Debug("remote call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.RecordError(metricPath, method, "read")
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	elapsed := time.Since(started)
	c.metrics.RecordRequest(metricPath, method, resp.StatusCode, elapsed)
	c.logger.Debug("remote call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// InfoPath is the health/auth probe endpoint.
const InfoPath = "/api/v4/info"

// UsersPath is the user creation endpoint.
const UsersPath = "/api/v4/users"

// CreateTeamPath returns the team creation endpoint scoped to a contest.
func CreateTeamPath(contestID string) string {
	q := url.Values{}
	q.Set("cid", contestID)
	return "/api/v4/teams?" + q.Encode()
}

// ContestTeamsPath returns the team listing endpoint for a contest.
func ContestTeamsPath(contestID string) string {
	return "/api/v4/contests/" + url.PathEscape(contestID) + "/teams"
}
