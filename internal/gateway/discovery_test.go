package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func manifestServer(t *testing.T, manifest string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.json" {
			t.Errorf("expected /openapi.json, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(manifest))
	}))
}

func TestAggregator_Discover(t *testing.T) {
	t.Run("merges routes and schemas from all services", func(t *testing.T) {
		usersServer := manifestServer(t, `{
			"openapi": "3.1.0",
			"info": {"title": "User Service", "version": "1.0.0"},
			"paths": {
				"/api/v1/users": {"post": {"summary": "Register a user"}},
				"/api/v1/users/{uuid}": {"get": {"summary": "Get a user"}}
			},
			"components": {"schemas": {"User": {"type": "object"}}}
		}`)
		defer usersServer.Close()

		cartServer := manifestServer(t, `{
			"openapi": "3.1.0",
			"info": {"title": "Shopcart Service", "version": "1.0.0"},
			"paths": {
				"/api/v1/carts/{user_uuid}": {"get": {"summary": "Get a cart"}}
			},
			"components": {"schemas": {"Cart": {"type": "object"}}}
		}`)
		defer cartServer.Close()

		registry := NewRegistry()
		registry.Add("users", usersServer.URL)
		registry.Add("shopcart", cartServer.URL)

		result := NewAggregator(registry, nil, "", testLogger()).Discover(context.Background())

		if result.Degraded() {
			t.Errorf("expected complete discovery, status: %v", result.Status)
		}
		if result.Routes.Len() != 3 {
			t.Errorf("expected 3 routes, got %d", result.Routes.Len())
		}

		route, _, ok := result.Routes.Match(http.MethodGet, "/api/v1/carts/u-1")
		if !ok || route.Service != "shopcart" {
			t.Errorf("expected shopcart route, got %+v", route)
		}

		item, ok := result.Doc.Paths["/api/v1/users"]
		if !ok {
			t.Fatal("expected /api/v1/users in merged document")
		}
		op := item["post"]
		if len(op.Tags) != 1 || op.Tags[0] != "users" {
			t.Errorf("expected operation tagged with its service, got %v", op.Tags)
		}

		if _, ok := result.Doc.Components.Schemas["User"]; !ok {
			t.Error("expected User schema in merged components")
		}
		if _, ok := result.Doc.Components.Schemas["Cart"]; !ok {
			t.Error("expected Cart schema in merged components")
		}
	})

	t.Run("skips unreachable services and reports degradation", func(t *testing.T) {
		usersServer := manifestServer(t, `{
			"openapi": "3.1.0",
			"info": {"title": "User Service", "version": "1.0.0"},
			"paths": {"/api/v1/users": {"post": {"summary": "Register a user"}}}
		}`)
		defer usersServer.Close()

		registry := NewRegistry()
		registry.Add("users", usersServer.URL)
		registry.Add("orders", "http://127.0.0.1:1")

		result := NewAggregator(registry, &http.Client{}, "", testLogger()).Discover(context.Background())

		if !result.Degraded() {
			t.Error("expected degraded discovery")
		}
		if result.Status["users"] != DiscoveryFetched {
			t.Errorf("expected users fetched, got %s", result.Status["users"])
		}
		if result.Status["orders"] != DiscoveryFailed {
			t.Errorf("expected orders failed, got %s", result.Status["orders"])
		}
		if result.Routes.Len() != 1 {
			t.Errorf("expected the reachable service's route, got %d routes", result.Routes.Len())
		}
	})

	t.Run("resolves collisions by configured policy", func(t *testing.T) {
		manifest := `{
			"openapi": "3.1.0",
			"info": {"title": "Service", "version": "1.0.0"},
			"paths": {"/api/v1/items": {"get": {"summary": "List items"}}}
		}`
		first := manifestServer(t, manifest)
		defer first.Close()
		second := manifestServer(t, manifest)
		defer second.Close()

		registry := NewRegistry()
		registry.Add("first", first.URL)
		registry.Add("second", second.URL)

		result := NewAggregator(registry, nil, ConflictLastWins, testLogger()).Discover(context.Background())
		route, _, ok := result.Routes.Match(http.MethodGet, "/api/v1/items")
		if !ok || route.Service != "second" {
			t.Errorf("expected last registered service to win, got %+v", route)
		}
		if result.Routes.Len() != 1 {
			t.Errorf("expected the replaced route to vanish, got %d routes", result.Routes.Len())
		}

		result = NewAggregator(registry, nil, ConflictFirstWins, testLogger()).Discover(context.Background())
		route, _, ok = result.Routes.Match(http.MethodGet, "/api/v1/items")
		if !ok || route.Service != "first" {
			t.Errorf("expected first registered service to win, got %+v", route)
		}
	})
}

func TestParseRegistry(t *testing.T) {
	t.Run("parses a service listing", func(t *testing.T) {
		registry, err := ParseRegistry("users=http://users:8081, orders=http://orders:8083/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		names := registry.Names()
		if len(names) != 2 || names[0] != "users" || names[1] != "orders" {
			t.Errorf("unexpected names: %v", names)
		}

		url, ok := registry.BaseURL("orders")
		if !ok || url != "http://orders:8083" {
			t.Errorf("expected trailing slash trimmed, got %q", url)
		}
	})

	t.Run("rejects malformed entries", func(t *testing.T) {
		if _, err := ParseRegistry("users-http://users:8081"); err == nil {
			t.Error("expected error for entry without separator")
		}
		if _, err := ParseRegistry(""); err == nil {
			t.Error("expected error for empty listing")
		}
	})
}
