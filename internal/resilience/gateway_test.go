package resilience

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"statflow/internal/errors"
)

func newTestGateway(serverURL string) *Gateway {
	return NewGateway(GatewayConfig{
		BaseURL:        serverURL,
		RequestTimeout: 2 * time.Second,
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		CacheTTL:       time.Minute,
		Breaker:        BreakerConfig{FailureThreshold: 5, Cooldown: 30 * time.Second},
	}, nil)
}

func TestGateway_SuccessfulCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("project_id") != "p1" {
			t.Errorf("Expected project_id query param, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	g := newTestGateway(server.URL)
	resp, err := g.Execute(context.Background(), Request{
		Endpoint:  "/analyze/descriptive",
		ProjectID: "p1",
		Params:    map[string]interface{}{"column": "age"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !resp.Success || resp.Cached {
		t.Errorf("Expected fresh successful response, got %+v", resp)
	}
	if string(resp.Data) != `{"ok":true}` {
		t.Errorf("Unexpected data: %s", resp.Data)
	}
}

// TestGateway_ClientErrorNotRetried verifies a 4xx fails fast with one attempt
func TestGateway_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad input", http.StatusBadRequest)
	}))
	defer server.Close()

	g := newTestGateway(server.URL)
	_, err := g.Execute(context.Background(), Request{Endpoint: "/analyze/ttest"})
	if err == nil {
		t.Fatal("Expected an error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("4xx should not be retried, saw %d attempts", got)
	}
	if !errors.HasCode(err, errors.CodeAnalysisExecution) {
		t.Errorf("Expected ANALYSIS_EXECUTION_ERROR, got %v", err)
	}
}

// TestGateway_ServerErrorRetried verifies 5xx is attempted MaxRetries times
func TestGateway_ServerErrorRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	g := newTestGateway(server.URL)
	_, err := g.Execute(context.Background(), Request{Endpoint: "/analyze/anova"})
	if err == nil {
		t.Fatal("Expected an error")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 attempts, saw %d", got)
	}
}

// TestGateway_BackoffDelaysIncrease verifies each inter-attempt delay
// exceeds the previous one while a 5xx keeps failing
func TestGateway_BackoffDelaysIncrease(t *testing.T) {
	var mu sync.Mutex
	var arrivals []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	g := NewGateway(GatewayConfig{
		BaseURL:        server.URL,
		RequestTimeout: 2 * time.Second,
		MaxRetries:     4,
		InitialBackoff: 30 * time.Millisecond,
		JitterFactor:   0,
		CacheTTL:       time.Minute,
		Breaker:        BreakerConfig{FailureThreshold: 10, Cooldown: 30 * time.Second},
	}, nil)

	if _, err := g.Execute(context.Background(), Request{Endpoint: "/analyze/anova"}); err == nil {
		t.Fatal("Expected an error after exhausting retries")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(arrivals) != 4 {
		t.Fatalf("Expected 4 attempts, saw %d", len(arrivals))
	}
	var prev time.Duration
	for i := 1; i < len(arrivals); i++ {
		gap := arrivals[i].Sub(arrivals[i-1])
		if gap <= prev {
			t.Errorf("Delay before attempt %d (%s) should exceed the previous delay (%s)",
				i+1, gap, prev)
		}
		prev = gap
	}
}

func TestGateway_RecoversAfterTransientFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "temporarily down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"recovered":true}`))
	}))
	defer server.Close()

	g := newTestGateway(server.URL)
	resp, err := g.Execute(context.Background(), Request{Endpoint: "/analyze/descriptive"})
	if err != nil {
		t.Fatalf("Expected recovery on third attempt, got %v", err)
	}
	if string(resp.Data) != `{"recovered":true}` {
		t.Errorf("Unexpected data: %s", resp.Data)
	}
	// Success closes the breaker regardless of the failed attempts before it
	if g.breaker.State().State != CircuitClosed {
		t.Errorf("Breaker should be closed after a successful request")
	}
}

// TestGateway_BreakerOpenRejection verifies an open circuit surfaces as
// SERVICE_UNAVAILABLE without touching the network
func TestGateway_BreakerOpenRejection(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	g := newTestGateway(server.URL)
	// Each Execute records one breaker failure; threshold is 5
	for i := 0; i < 5; i++ {
		_, _ = g.Execute(context.Background(), Request{Endpoint: "/analyze/ttest"})
	}
	if g.breaker.State().State != CircuitOpen {
		t.Fatalf("Breaker should be open after 5 failed requests, got %s", g.breaker.State().State)
	}

	before := atomic.LoadInt32(&calls)
	_, err := g.Execute(context.Background(), Request{Endpoint: "/analyze/ttest"})
	if err == nil {
		t.Fatal("Expected rejection")
	}
	if !errors.HasCode(err, errors.CodeServiceUnavailable) {
		t.Errorf("Expected SERVICE_UNAVAILABLE, got %v", err)
	}
	if atomic.LoadInt32(&calls) != before {
		t.Error("Open breaker must not make network calls")
	}
}

func TestGateway_CacheHitSkipsNetwork(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"n":42}`))
	}))
	defer server.Close()

	g := newTestGateway(server.URL)
	req := Request{
		Endpoint: "/analyze/descriptive",
		Params:   map[string]interface{}{"column": "age"},
		UseCache: true,
	}

	first, err := g.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first.Cached {
		t.Error("First response should not be cached")
	}

	second, err := g.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !second.Cached {
		t.Error("Second response should be served from cache")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected exactly 1 network call, saw %d", calls)
	}
	if string(second.Data) != `{"n":42}` {
		t.Errorf("Cached data mismatch: %s", second.Data)
	}
}

// TestGateway_TimeoutSurfacesAsTimeout verifies a hung upstream maps to
// TIMEOUT, distinct from the breaker's SERVICE_UNAVAILABLE
func TestGateway_TimeoutSurfacesAsTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	g := NewGateway(GatewayConfig{
		BaseURL:        server.URL,
		RequestTimeout: 50 * time.Millisecond,
		MaxRetries:     1,
		InitialBackoff: time.Millisecond,
		CacheTTL:       time.Minute,
	}, nil)

	_, err := g.Execute(context.Background(), Request{Endpoint: "/analyze/descriptive"})
	if err == nil {
		t.Fatal("Expected a timeout error")
	}
	if !errors.HasCode(err, errors.CodeTimeout) {
		t.Errorf("Expected TIMEOUT, got %v", err)
	}
}

func TestGateway_Healthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Expected /health probe, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	g := newTestGateway(server.URL)
	if !g.Healthy(context.Background()) {
		t.Error("Expected healthy")
	}

	server.Close()
	if g.Healthy(context.Background()) {
		t.Error("Expected unhealthy after server shutdown")
	}
}

func TestGateway_Status(t *testing.T) {
	g := newTestGateway("http://localhost:0")
	status := g.Status()
	if status.Circuit.State != CircuitClosed {
		t.Errorf("Fresh gateway should report a closed circuit, got %s", status.Circuit.State)
	}
	if status.CacheEntries != 0 {
		t.Errorf("Fresh gateway should report an empty cache, got %d", status.CacheEntries)
	}
}
