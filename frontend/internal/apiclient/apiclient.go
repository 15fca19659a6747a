package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/forumstartup/forum/shared/errors"
	"github.com/forumstartup/forum/shared/logger"
	"github.com/forumstartup/forum/shared/metrics"
	"github.com/forumstartup/forum/shared/utils"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// RequestIDHeader carries a fresh id on every call for log correlation.
const RequestIDHeader = "X-Request-ID"

// APIClient struct handles all communication with the backend API.
// The session lives in the cookie jar: whatever the backend sets on login
// is sent back on every later call.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client

	base *url.URL
	log  *slog.Logger

	mu             sync.RWMutex
	onUnauthorized func()
}

type Option func(*APIClient)

// WithTimeout bounds every call. Without it the http.Client default applies.
func WithTimeout(d time.Duration) Option {
	return func(c *APIClient) { c.HttpClient.Timeout = d }
}

// WithTransport replaces the underlying transport. Metrics still wrap it.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *APIClient) { c.HttpClient.Transport = metrics.Transport(rt) }
}

// New creates a new client for interacting with the backend.
func New(baseURL string, opts ...Option) (*APIClient, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &APIClient{
		BaseURL: base.String(),
		HttpClient: &http.Client{
			Jar:       jar,
			Transport: metrics.Transport(nil),
		},
		base: base,
		log:  logger.For("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnUnauthorized registers fn to run whenever a private or admin call is
// answered with 401, i.e. the session is gone server side.
func (c *APIClient) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *APIClient) unauthorized(route string) {
	if !strings.HasPrefix(route, "/private/") && !strings.HasPrefix(route, "/admin/") {
		return
	}
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// do is the single, unified helper for making API requests. route is the
// endpoint pattern used for metrics, path the concrete path. A nil body
// sends no payload. It returns the response body of a 2xx answer;
// anything else becomes an *errors.ErrorWithStatusCode, and a request
// that got no answer wraps errors.ErrBackendUnavailable.
func (c *APIClient) do(ctx context.Context, method, route, path string, query url.Values, body any) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(jsonBody)
	}

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(metrics.WithRoute(ctx, route), method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", "request_id", requestID, "method", method, "route", route, "error", err)
		return nil, fmt.Errorf("%w: %w", errors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", errors.ErrBackendUnavailable, err)
	}
	c.log.Debug("request done",
		"request_id", requestID,
		"method", method,
		"route", route,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.unauthorized(route)
		}
		return nil, utils.ParseErrorBody(resp.StatusCode, bodyBytes)
	}
	return bodyBytes, nil
}

func decodeInto(body []byte, what string, v any) error {
	if err := utils.Decode(bytes.NewReader(body), v); err != nil {
		return fmt.Errorf("cannot decode %s response: %w", what, err)
	}
	return nil
}

func idPath(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			escaped[i] = url.PathEscape(s)
			continue
		}
		escaped[i] = a
	}
	return fmt.Sprintf(format, escaped...)
}
