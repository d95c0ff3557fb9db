// ABOUTME: HTTP client for the Python 3 Integration Gateway REST API
// ABOUTME: Thin synchronous wrapper: typed requests in, typed DTOs out, no retries

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultGatewayURL     = "http://localhost:8088"
	DefaultBasePath       = "/data/python3integration/api/v1"
	DefaultRequestTimeout = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

// Client is the API client for the Gateway's Python 3 endpoints.
// It holds no session state and is safe to share between goroutines.
type Client struct {
	gatewayURL string
	baseURL    string
	httpClient *http.Client
	setupErr   error // fails every request, e.g. an unusable jump host
}

type options struct {
	basePath       string
	requestTimeout time.Duration
	connectTimeout time.Duration
	allProxy       string
	httpClient     *http.Client
}

// Option customizes a Client
type Option func(*options)

// WithBasePath overrides the API base path
func WithBasePath(path string) Option {
	return func(o *options) {
		if strings.TrimSpace(path) != "" {
			o.basePath = NormalizeBasePath(path)
		}
	}
}

// NormalizeBasePath gives a base path exactly one leading slash and no
// trailing slash. Empty means the default base path.
func NormalizeBasePath(path string) string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return DefaultBasePath
	}
	return "/" + path
}

// WithRequestTimeout bounds each request end to end
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithConnectTimeout bounds TCP connection setup
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.connectTimeout = d }
}

// WithAllProxy routes connections through an SSH jump host.
// Format: ssh+socks5://user@host:port?private-key=/path/to/key
func WithAllProxy(allProxy string) Option {
	return func(o *options) { o.allProxy = allProxy }
}

// WithHTTPClient replaces the underlying HTTP client; timeouts and proxy options are ignored
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New creates a new API client for the given Gateway URL
func New(gatewayURL string, opts ...Option) *Client {
	o := options{
		basePath:       DefaultBasePath,
		requestTimeout: DefaultRequestTimeout,
		connectTimeout: DefaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	gatewayURL = NormalizeGatewayURL(gatewayURL)
	if gatewayURL == "" {
		gatewayURL = DefaultGatewayURL
	}

	hc := o.httpClient
	var setupErr error
	if hc == nil {
		hc, setupErr = newHTTPClient(o)
		if setupErr != nil {
			slog.Error("Gateway client unusable", "gateway", gatewayURL, "error", setupErr)
		}
	}

	slog.Debug("Gateway client initialized", "gateway", gatewayURL, "base_path", o.basePath)

	return &Client{
		gatewayURL: gatewayURL,
		baseURL:    gatewayURL + o.basePath,
		httpClient: hc,
		setupErr:   setupErr,
	}
}

// newHTTPClient builds the transport. A proxy that cannot be set up is an
// error; the returned client is still non-nil but must not be used.
func newHTTPClient(o options) (*http.Client, error) {
	dialer := &net.Dialer{Timeout: o.connectTimeout}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext

	hc := &http.Client{
		Timeout:   o.requestTimeout,
		Transport: transport,
	}

	if o.allProxy != "" {
		dial, err := createSOCKS5DialContextFunc(o.allProxy)
		if err != nil {
			return hc, err
		}
		transport.Proxy = nil
		transport.DialContext = dial
	}
	return hc, nil
}

// NormalizeGatewayURL adds http:// when no scheme is given and strips trailing slashes
func NormalizeGatewayURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	return strings.TrimRight(url, "/")
}

// GatewayURL returns the normalized Gateway URL
func (c *Client) GatewayURL() string {
	return c.gatewayURL
}

// BaseURL returns the Gateway URL joined with the API base path
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, body interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPost, endpoint, body)
}

func (c *Client) delete(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil)
}

// do sends one request and returns the body of a 200 response.
// Any other status becomes a *StatusError; connection failures a *TransportError.
func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	if c.setupErr != nil {
		return nil, &TransportError{Method: method, Path: endpoint, Gateway: c.gatewayURL, Err: c.setupErr}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	slog.Debug("Gateway request started",
		"request_id", requestID,
		"method", method,
		"path", endpoint,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.handleRequestError(ctx, method, endpoint, err)
	}

	slog.Debug("Gateway request completed",
		"request_id", requestID,
		"method", method,
		"path", endpoint,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(method, endpoint, resp.StatusCode, data)
	}

	return data, nil
}

// handleRequestError converts transport failures into a *TransportError
func (c *Client) handleRequestError(ctx context.Context, method, endpoint string, err error) error {
	te := &TransportError{
		Method:  method,
		Path:    endpoint,
		Gateway: c.gatewayURL,
		Err:     err,
	}
	switch {
	case ctx.Err() == context.Canceled:
		te.Canceled = true
	case ctx.Err() == context.DeadlineExceeded:
		te.Timeout = true
	default:
		var netErr net.Error
		if ok := asNetError(err, &netErr); ok && netErr.Timeout() {
			te.Timeout = true
		}
	}
	slog.Warn("Gateway request failed", "method", method, "path", endpoint, "error", err)
	return te
}

// handleErrorResponse wraps a non-200 response
func (c *Client) handleErrorResponse(method, endpoint string, code int, body []byte) error {
	slog.Warn("Gateway returned error status", "method", method, "path", endpoint, "status", code)
	return &StatusError{
		Method: method,
		Path:   endpoint,
		Code:   code,
		Body:   strings.TrimSpace(string(body)),
	}
}
