package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quantfolio/quantfolio/pkg/logger"
)

func TestNew(t *testing.T) {
	client := New(logger.NewNop(), 10*time.Second)
	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.httpClient == nil {
		t.Error("Expected http.Client to be initialized")
	}

	if client.httpClient.Timeout != 10*time.Second {
		t.Errorf("Expected timeout=10s, got %v", client.httpClient.Timeout)
	}

	if client.retryConfig.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries=3, got %d", client.retryConfig.MaxRetries)
	}
}

func TestWithRetry(t *testing.T) {
	client := New(logger.NewNop(), time.Second).WithRetry(5, 2*time.Second)

	if client.retryConfig.MaxRetries != 5 {
		t.Errorf("Expected MaxRetries=5, got %d", client.retryConfig.MaxRetries)
	}

	if client.retryConfig.InitialDelay != 2*time.Second {
		t.Errorf("Expected InitialDelay=2s, got %v", client.retryConfig.InitialDelay)
	}
}

func TestDisableRetry(t *testing.T) {
	client := New(logger.NewNop(), time.Second).DisableRetry()

	if client.retryConfig.Enabled {
		t.Error("Expected retry to be disabled")
	}
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.Header.Get("X-Test") != "1" {
			t.Errorf("Expected X-Test header to be forwarded")
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(logger.NewNop(), 5*time.Second)
	resp, err := client.Get(context.Background(), server.URL, map[string]string{"X-Test": "1"})
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestGetJSONDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"quantfolio","count":3}`))
	}))
	defer server.Close()

	var dest struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	client := New(logger.NewNop(), 5*time.Second)
	if err := client.GetJSON(context.Background(), server.URL, nil, &dest); err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}

	if dest.Name != "quantfolio" || dest.Count != 3 {
		t.Errorf("Unexpected decode result: %+v", dest)
	}
}

func TestGetJSONNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	}))
	defer server.Close()

	var dest map[string]interface{}
	client := New(logger.NewNop(), 5*time.Second)
	err := client.GetJSON(context.Background(), server.URL, nil, &dest)
	if err == nil {
		t.Fatal("Expected error for non-200 response")
	}
}

func TestRetryOn500(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(logger.NewNop(), 5*time.Second).WithRetry(3, 10*time.Millisecond)
	resp, err := client.Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	resp.Body.Close()

	if got := atomic.LoadInt64(&calls); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(logger.NewNop(), 5*time.Second)
	resp, err := client.Get(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("Expected a single attempt for a 4xx, got %d", got)
	}
}

func TestDisabledRetryFailsFast(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(logger.NewNop(), 5*time.Second).DisableRetry()
	_, err := client.Get(context.Background(), server.URL, nil)
	if err == nil {
		t.Fatal("Expected error for persistent 500")
	}

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("Expected a single attempt with retry disabled, got %d", got)
	}
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Decode body failed: %v", err)
		}
		if body["text"] != "hello" {
			t.Errorf("Unexpected body: %v", body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(logger.NewNop(), 5*time.Second)
	resp, err := client.PostJSON(context.Background(), server.URL, map[string]string{"text": "hello"})
	if err != nil {
		t.Fatalf("PostJSON() failed: %v", err)
	}
	resp.Body.Close()
}

func TestRateLimitWaits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(logger.NewNop(), 5*time.Second).WithRateLimit(50, 1)

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), server.URL, nil)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		resp.Body.Close()
	}

	// Burst of 1 at 50 rps means the second and third calls wait ~20ms each.
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Expected rate limiter to slow requests, took %v", elapsed)
	}
}
