package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestForwarder(t *testing.T, service, baseURL string, client *http.Client) *Forwarder {
	t.Helper()
	registry := NewRegistry()
	registry.Add(service, baseURL)
	if client == nil {
		client = http.DefaultClient
	}
	return NewForwarder(registry, client, testLogger())
}

func TestForwarder_Forward(t *testing.T) {
	t.Run("replays the backend response byte-exact", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Request-Id", "req-7")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"user not found"}`))
		}))
		defer backend.Close()

		f := newTestForwarder(t, "users", backend.URL, backend.Client())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-1", nil)
		rec := httptest.NewRecorder()

		f.Forward(rec, req, "users", "/api/v1/users/u-1")

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
		if rec.Body.String() != `{"detail":"user not found"}` {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
		if rec.Header().Get("X-Request-Id") != "req-7" {
			t.Errorf("expected backend header to pass through, got %q", rec.Header().Get("X-Request-Id"))
		}
	})

	t.Run("forwards method, body and query string", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/api/v1/orders" {
				t.Errorf("expected /api/v1/orders, got %s", r.URL.Path)
			}
			if r.URL.RawQuery != "dry_run=true" {
				t.Errorf("expected query dry_run=true, got %s", r.URL.RawQuery)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"cart_id":"c-1"}` {
				t.Errorf("unexpected body: %s", body)
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer backend.Close()

		f := newTestForwarder(t, "orders", backend.URL, backend.Client())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders?dry_run=true", strings.NewReader(`{"cart_id":"c-1"}`))
		rec := httptest.NewRecorder()

		f.Forward(rec, req, "orders", "/api/v1/orders")

		if rec.Code != http.StatusCreated {
			t.Errorf("expected status 201, got %d", rec.Code)
		}
	})

	t.Run("strips excluded headers and keeps the rest", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Cookie"); got != "" {
				t.Errorf("cookie should not be forwarded, got %q", got)
			}
			if got := r.Header.Get("Referer"); got != "" {
				t.Errorf("referer should not be forwarded, got %q", got)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
				t.Errorf("expected authorization to pass through, got %q", got)
			}
			if got := r.Header.Get("X-Custom"); got != "keep" {
				t.Errorf("expected custom header to pass through, got %q", got)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer backend.Close()

		f := newTestForwarder(t, "users", backend.URL, backend.Client())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-1", nil)
		req.Header.Set("Cookie", "session=abc")
		req.Header.Set("Referer", "https://example.com")
		req.Header.Set("Authorization", "Bearer token-1")
		req.Header.Set("X-Custom", "keep")
		rec := httptest.NewRecorder()

		f.Forward(rec, req, "users", "/api/v1/users/u-1")

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("injects the authenticated user id", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-User-Id"); got != "u-55" {
				t.Errorf("expected X-User-Id u-55, got %q", got)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer backend.Close()

		f := newTestForwarder(t, "users", backend.URL, backend.Client())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-55", nil)
		req = req.WithContext(WithIdentity(req.Context(), "u-55"))
		rec := httptest.NewRecorder()

		f.Forward(rec, req, "users", "/api/v1/users/u-55")

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("answers 400 for an unknown service", func(t *testing.T) {
		f := newTestForwarder(t, "users", "http://unused", http.DefaultClient)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shops/1", nil)
		rec := httptest.NewRecorder()

		f.Forward(rec, req, "shops", "/api/v1/shops/1")

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("answers 503 when the backend is unreachable", func(t *testing.T) {
		f := newTestForwarder(t, "users", "http://127.0.0.1:1", &http.Client{})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-1", nil)
		rec := httptest.NewRecorder()

		f.Forward(rec, req, "users", "/api/v1/users/u-1")

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "error" || resp["message"] != "service unreachable" {
			t.Errorf("unexpected error body: %v", resp)
		}
	})
}
