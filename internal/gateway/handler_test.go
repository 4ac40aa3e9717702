package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ilhamdjango/ecommerce-core/internal/openapi"
)

func TestHandler_HandleProxy(t *testing.T) {
	t.Run("forwards a matched route with parameters substituted", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/users/u-3" {
				t.Errorf("expected /api/v1/users/u-3, got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"uuid":"u-3"}`))
		}))
		defer backend.Close()

		registry := NewRegistry()
		registry.Add("users", backend.URL)

		routes := NewRouteTable()
		routes.Add(&Route{Service: "users", Method: http.MethodGet, Template: "/api/v1/users/{uuid}"})
		routes.Freeze()

		handler := NewHandler(
			NewForwarder(registry, backend.Client(), testLogger()),
			&DiscoveryResult{Routes: routes, Doc: openapi.NewDocument("Gateway", "1.0.0", "")},
			testLogger(),
		)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-3", nil)
		rec := httptest.NewRecorder()

		handler.HandleProxy(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if rec.Body.String() != `{"uuid":"u-3"}` {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("answers 404 for an undiscovered route", func(t *testing.T) {
		routes := NewRouteTable()
		routes.Freeze()

		handler := NewHandler(
			NewForwarder(NewRegistry(), http.DefaultClient, testLogger()),
			&DiscoveryResult{Routes: routes, Doc: openapi.NewDocument("Gateway", "1.0.0", "")},
			testLogger(),
		)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil)
		rec := httptest.NewRecorder()

		handler.HandleProxy(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "error" || resp["message"] != "route not found" {
			t.Errorf("unexpected error body: %v", resp)
		}
	})
}

func TestHandler_HandleHealth(t *testing.T) {
	t.Run("reports degraded discovery", func(t *testing.T) {
		handler := NewHandler(nil, &DiscoveryResult{
			Routes: NewRouteTable(),
			Doc:    openapi.NewDocument("Gateway", "1.0.0", ""),
			Status: map[string]DiscoveryStatus{"users": DiscoveryFetched, "orders": DiscoveryFailed},
		}, testLogger())

		rec := httptest.NewRecorder()
		handler.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "ok" || resp["discovery"] != "degraded" {
			t.Errorf("unexpected health body: %v", resp)
		}
	})
}
