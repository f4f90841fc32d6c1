package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Concierge/backend/go/internal/config"
	"Concierge/backend/go/pkg/circuitbreaker"
	"Concierge/backend/go/pkg/logger"
)

// helper function to create a mock config for testing
func newTestConfig() *config.AppConfig {
	return &config.AppConfig{
		Middleware: config.MiddlewareConfig{
			RateLimiter: config.RateLimiterConfig{
				Enabled:    true,
				Algorithm:  "tokenBucket",
				MaxClients: 100,
				TokenBucket: config.TokenBucketConfig{
					Rate:     10,
					Capacity: 5,
				},
			},
			CircuitBreaker: config.CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 2,
				SuccessThreshold: 2,
				Timeout:          "10s",
			},
		},
	}
}

func TestNewServer_WithAddress(t *testing.T) {
	cfg := newTestConfig()
	addr := ":9999"

	srv, err := NewServer(cfg, http.NotFoundHandler(), logger.Discard(), WithAddress(addr))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.httpServer.Addr != addr {
		t.Errorf("Expected server address to be %s, but got %s", addr, srv.httpServer.Addr)
	}
}

func TestNewServer_DefaultAddress(t *testing.T) {
	srv, err := NewServer(&config.AppConfig{}, http.NotFoundHandler(), logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if srv.httpServer.Addr != ":8080" {
		t.Errorf("Addr = %s", srv.httpServer.Addr)
	}
}

func TestNewServer_BadAlgorithm(t *testing.T) {
	cfg := newTestConfig()
	cfg.Middleware.RateLimiter.Algorithm = "leakyBucket"
	if _, err := NewServer(cfg, http.NotFoundHandler(), logger.Discard()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	cfg := newTestConfig()
	cfg.Middleware.RateLimiter.TokenBucket.Capacity = 2
	cfg.Middleware.RateLimiter.TokenBucket.Rate = 1

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv, err := NewServer(cfg, ok, logger.Discard())
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	testServer := httptest.NewServer(srv.Handler())
	defer testServer.Close()

	// First 2 requests should pass (equal to capacity)
	for i := 0; i < 2; i++ {
		resp, err := http.Get(testServer.URL)
		if err != nil {
			t.Fatalf("Request %d failed: %v", i+1, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status OK on request %d, got %d", i+1, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(testServer.URL)
	if err != nil {
		t.Fatalf("Request 3 failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status TooManyRequests on request 3, got %d", resp.StatusCode)
	}
}

func TestCircuitBreakerMiddleware(t *testing.T) {
	cfg := newTestConfig()
	cfg.Middleware.RateLimiter.Enabled = false

	fail := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	})
	srv, err := NewServer(cfg, fail, logger.Discard())
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	testServer := httptest.NewServer(srv.Handler())
	defer testServer.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Get(testServer.URL + "/fail")
		if err != nil {
			t.Fatalf("Request %d failed: %v", i+1, err)
		}
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("Expected status InternalServerError on request %d, got %d", i+1, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(testServer.URL + "/fail")
	if err != nil {
		t.Fatalf("Request 3 failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status ServiceUnavailable on request 3, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Circuit Breaker is open") {
		t.Errorf("Expected body to contain 'Circuit Breaker is open', got '%s'", string(body))
	}
}

func TestClientJSONHelpers(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			w.Header().Set("Content-Type", "application/json")
			io.Copy(w, r.Body)
		case "/bad":
			http.Error(w, `{"error":"message is required"}`, http.StatusBadRequest)
		default:
			w.Write([]byte(`{"status":"ok"}`))
		}
	}))
	defer backend.Close()

	c, err := NewClient(config.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, SuccessThreshold: 1, Timeout: "1s"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	var echoed map[string]string
	if err := c.PostJSON(ctx, backend.URL+"/echo", map[string]string{"message": "hi"}, &echoed); err != nil {
		t.Fatal(err)
	}
	if echoed["message"] != "hi" {
		t.Errorf("echoed = %v", echoed)
	}

	var health map[string]string
	if err := c.GetJSON(ctx, backend.URL+"/healthz", &health); err != nil || health["status"] != "ok" {
		t.Errorf("GetJSON() = %v, %v", health, err)
	}

	var statusErr *StatusError
	err = c.GetJSON(ctx, backend.URL+"/bad", nil)
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Errorf("GetJSON(/bad) error = %v", err)
	}
}

func TestClientOpensCircuit(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer backend.Close()

	c, err := NewClient(config.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, SuccessThreshold: 1, Timeout: "1m"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := c.GetJSON(context.Background(), backend.URL, nil); err == nil {
			t.Fatal("expected server error")
		}
	}
	if err := c.GetJSON(context.Background(), backend.URL, nil); !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
}
