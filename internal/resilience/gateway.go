package resilience

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"statflow/domain/core"
	"statflow/internal/errors"
	"statflow/internal/logging"
)

// GatewayConfig configures the resilience gateway
type GatewayConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration // hard per-attempt timeout
	MaxRetries     int           // total attempts, including the first
	InitialBackoff time.Duration
	JitterFactor   float64 // fraction of the backoff added as jitter (0-1)
	CacheTTL       time.Duration
	Breaker        BreakerConfig
}

// DefaultGatewayConfig returns the defaults from the service contract
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		JitterFactor:   0.2,
		CacheTTL:       5 * time.Minute,
		Breaker:        DefaultBreakerConfig(),
	}
}

// Request describes one outbound call to the computation service
type Request struct {
	Endpoint  string                 `json:"endpoint"`
	Method    string                 `json:"method"`
	Params    map[string]interface{} `json:"params,omitempty"`
	ProjectID string                 `json:"project_id,omitempty"`
	UseCache  bool                   `json:"use_cache,omitempty"`
}

// Response is the gateway's answer for a request
type Response struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Cached    bool            `json:"cached"`
	Timestamp time.Time       `json:"timestamp"`
}

// Status exposes gateway internals for introspection endpoints
type Status struct {
	Circuit      Snapshot `json:"circuit"`
	CacheEntries int      `json:"cache_entries"`
	RetryAfterMs int64    `json:"retry_after_ms,omitempty"`
}

// Gateway is the process-wide resilience layer in front of the external
// computation service. Breaker state and cache are shared by every caller:
// one tenant's failures trip the breaker for all tenants, protecting the
// single downstream service from aggregate load.
//
// The breaker counts logical requests, not network attempts: retries run
// inside one Execute call, and RecordSuccess/RecordFailure fire once per
// request after retries resolve. A HALF_OPEN trial may therefore span up
// to MaxRetries network calls.
type Gateway struct {
	config  GatewayConfig
	breaker *CircuitBreaker
	cache   *ResponseCache
	client  *http.Client
	logger  *logging.Logger
}

// NewGateway creates a gateway. Construct once per process at startup.
func NewGateway(config GatewayConfig, logger *logging.Logger) *Gateway {
	defaults := DefaultGatewayConfig()
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = defaults.InitialBackoff
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = defaults.CacheTTL
	}
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Gateway{
		config:  config,
		breaker: NewCircuitBreaker(config.Breaker),
		cache:   NewResponseCache(config.CacheTTL),
		client:  &http.Client{},
		logger:  logger,
	}
}

// Execute runs one request through cache, breaker, retry and timeout.
// A breaker-open rejection surfaces as SERVICE_UNAVAILABLE; an exhausted
// hard timeout surfaces as TIMEOUT, so callers can tell "don't retry yet"
// apart from "maybe retry now".
func (g *Gateway) Execute(ctx context.Context, req Request) (*Response, error) {
	var key core.CacheKey
	if req.UseCache {
		k, err := Key(req.Endpoint, req.Params)
		if err != nil {
			return nil, errors.Wrap(err, "failed to derive cache key")
		}
		key = k
		if value, ok := g.cache.Get(k); ok {
			g.logger.Debug("[Gateway] cache hit for %s", req.Endpoint)
			return &Response{Success: true, Data: value, Cached: true, Timestamp: time.Now()}, nil
		}
	}

	if !g.breaker.CanAttempt() {
		g.logger.Warn("[Gateway] circuit open, rejecting %s", req.Endpoint)
		return nil, errors.ServiceUnavailable(
			fmt.Sprintf("computation service circuit is open, retry after %s", g.breaker.RetryAfter().Round(time.Second)))
	}

	data, err := g.executeWithRetry(ctx, req)
	if err != nil {
		g.breaker.RecordFailure()
		return nil, err
	}
	g.breaker.RecordSuccess()

	if req.UseCache {
		g.cache.Put(key, data)
	}

	return &Response{Success: true, Data: data, Cached: false, Timestamp: time.Now()}, nil
}

// executeWithRetry makes up to MaxRetries attempts with exponential backoff.
// 4xx responses are never retried; 5xx and transport errors are.
func (g *Gateway) executeWithRetry(ctx context.Context, req Request) (json.RawMessage, error) {
	backoff := g.config.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= g.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Timeout("request cancelled before attempt")
		}

		data, retryable, err := g.callOnce(ctx, req)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if attempt == g.config.MaxRetries {
			break
		}

		delay := backoff
		if g.config.JitterFactor > 0 {
			jitter := time.Duration(rand.Float64() * g.config.JitterFactor * float64(backoff))
			delay += jitter
		}
		g.logger.Debug("[Gateway] attempt %d/%d failed for %s, retrying in %s: %v",
			attempt, g.config.MaxRetries, req.Endpoint, delay, err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, errors.Timeout("request cancelled during backoff")
		}
		backoff *= 2
	}

	return nil, lastErr
}

// callOnce performs a single HTTP attempt under the hard timeout. The second
// return reports whether the failure may be retried.
func (g *Gateway) callOnce(ctx context.Context, req Request) (json.RawMessage, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.RequestTimeout)
	defer cancel()

	endpoint := g.config.BaseURL + req.Endpoint
	if req.ProjectID != "" {
		endpoint += "?project_id=" + url.QueryEscape(req.ProjectID)
	}

	var body io.Reader
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	if method == http.MethodPost {
		encoded, err := json.Marshal(req.Params)
		if err != nil {
			return nil, false, errors.Wrap(err, "failed to encode request parameters")
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.config.APIKey != "" {
		httpReq.Header.Set("X-API-Key", g.config.APIKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, true, errors.Timeout(
				fmt.Sprintf("call to %s exceeded %s", req.Endpoint, g.config.RequestTimeout))
		}
		// Transport-level errors are retryable
		return nil, true, errors.Wrapf(err, "call to %s failed", req.Endpoint)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.Wrapf(err, "failed to read response from %s", req.Endpoint)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return payload, false, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Client error: retrying cannot help
		return nil, false, errors.New(errors.CodeAnalysisExecution,
			fmt.Sprintf("%s returned client error %d: %s", req.Endpoint, resp.StatusCode, truncate(payload, 200)))
	default:
		return nil, true, errors.New(errors.CodeAnalysisExecution,
			fmt.Sprintf("%s returned server error %d", req.Endpoint, resp.StatusCode))
	}
}

// Healthy probes the computation service health endpoint. The probe bypasses
// the breaker and retries: it is itself the signal dispatch degrades on.
func (g *Gateway) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.config.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	if g.config.APIKey != "" {
		httpReq.Header.Set("X-API-Key", g.config.APIKey)
	}
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Status returns gateway internals for the introspection endpoint
func (g *Gateway) Status() Status {
	return Status{
		Circuit:      g.breaker.State(),
		CacheEntries: g.cache.Len(),
		RetryAfterMs: g.breaker.RetryAfter().Milliseconds(),
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
