package client

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

	"github.com/google/uuid"

	"github.com/tillware/posgate/pkg/observability"
)

// DefaultTimeout bounds every backend call. Timeouts read as "authority
// unreachable" and trigger the resolver's local fallback.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

const (
	serviceUser = "user"
	servicePOS  = "pos"
)

// TokenProvider supplies the current session's bearer token. Implemented by
// session.Store.
type TokenProvider interface {
	// Token returns the live credential, or false when the session is
	// anonymous or the credential has expired.
	Token() (string, bool)
}

// Config holds the backend endpoints and transport settings
type Config struct {
	// UserServiceURL is the base URL of the auth/RBAC service
	UserServiceURL string
	// POSServiceURL is the base URL of the sales/inventory service
	POSServiceURL string
	// Timeout applies per request; zero means DefaultTimeout
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests
	HTTPClient *http.Client
}

// Client talks to the POS backend services
type Client struct {
	userBase string
	posBase  string
	http     *http.Client

	tokens         TokenProvider
	onUnauthorized func()

	log     *observability.Logger
	metrics *observability.Metrics
}

// New creates a backend client. tokens may be nil for a client that only
// performs unauthenticated calls (login).
func New(cfg Config, tokens TokenProvider, log *observability.Logger, metrics *observability.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout

	if log == nil {
		log = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}

	return &Client{
		userBase: strings.TrimRight(cfg.UserServiceURL, "/"),
		posBase:  strings.TrimRight(cfg.POSServiceURL, "/"),
		http:     httpClient,
		tokens:   tokens,
		log:      log,
		metrics:  metrics,
	}
}

// SetTokenProvider wires the credential source. Called by the session store
// after construction to break the store/client dependency loop.
func (c *Client) SetTokenProvider(tokens TokenProvider) {
	c.tokens = tokens
}

// SetOnUnauthorized registers the hook fired when an authenticated request
// gets a 401. The session store registers its logout here.
func (c *Client) SetOnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// do performs one request/response cycle. withAuth attaches the bearer token
// when one is available; a 401 on an authenticated request fires the
// OnUnauthorized hook.
func (c *Client) do(ctx context.Context, service, operation, method, url string, body, out interface{}, withAuth bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := observability.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	attached := false
	if withAuth && c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
			attached = true
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ClientRequestDuration.WithLabelValues(service, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ClientRequestsTotal.WithLabelValues(service, operation, "error").Inc()
		c.log.WithError(err).WithFields(map[string]interface{}{
			"operation":  operation,
			"request_id": requestID,
		}).Debug("backend request failed")
		return fmt.Errorf("%w: %v", ErrAuthorityUnreachable, err)
	}
	defer resp.Body.Close()

	c.metrics.ClientRequestsTotal.WithLabelValues(service, operation, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrAuthorityUnreachable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if attached && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("%w: %s", ErrAuthenticationFailure, errorDetail(data))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// errorDetail extracts a human-readable message from an error payload. The
// user service answers FastAPI-style {"detail": ...}; other services use
// {"error": ...}.
func errorDetail(data []byte) string {
	var envelope struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil {
		if envelope.Detail != "" {
			return envelope.Detail
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	detail := strings.TrimSpace(string(data))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return detail
}

func (c *Client) userURL(path string) string {
	return c.userBase + path
}

func (c *Client) posURL(path string) string {
	return c.posBase + path
}
