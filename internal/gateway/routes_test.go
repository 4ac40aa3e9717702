package gateway

import (
	"net/http"
	"testing"
)

func TestRouteTable_Match(t *testing.T) {
	table := NewRouteTable()
	table.Add(&Route{Service: "users", Method: http.MethodGet, Template: "/api/v1/users/{uuid}"})
	table.Add(&Route{Service: "shopcart", Method: http.MethodGet, Template: "/api/v1/carts/{user_uuid}"})
	table.Add(&Route{Service: "shopcart", Method: http.MethodPost, Template: "/api/v1/carts/{user_uuid}/items"})
	table.Add(&Route{Service: "shopcart", Method: http.MethodGet, Template: "/api/v1/carts/summary"})
	table.Freeze()

	t.Run("matches literal templates", func(t *testing.T) {
		route, params, ok := table.Match(http.MethodGet, "/api/v1/carts/summary")
		if !ok {
			t.Fatal("expected a match")
		}
		if route.Template != "/api/v1/carts/summary" {
			t.Errorf("expected literal route to win, got %s", route.Template)
		}
		if len(params) != 0 {
			t.Errorf("expected no params, got %v", params)
		}
	})

	t.Run("extracts path parameters", func(t *testing.T) {
		route, params, ok := table.Match(http.MethodGet, "/api/v1/users/abc-123")
		if !ok {
			t.Fatal("expected a match")
		}
		if route.Service != "users" {
			t.Errorf("expected users route, got %s", route.Service)
		}
		if params["uuid"] != "abc-123" {
			t.Errorf("expected uuid param abc-123, got %v", params)
		}
	})

	t.Run("matches multi-segment templates", func(t *testing.T) {
		route, params, ok := table.Match(http.MethodPost, "/api/v1/carts/u-9/items")
		if !ok {
			t.Fatal("expected a match")
		}
		if route.Template != "/api/v1/carts/{user_uuid}/items" {
			t.Errorf("unexpected route %s", route.Template)
		}
		if params["user_uuid"] != "u-9" {
			t.Errorf("expected user_uuid param u-9, got %v", params)
		}
	})

	t.Run("rejects wrong method", func(t *testing.T) {
		if _, _, ok := table.Match(http.MethodDelete, "/api/v1/users/abc-123"); ok {
			t.Error("expected no match for DELETE")
		}
	})

	t.Run("rejects unknown paths", func(t *testing.T) {
		if _, _, ok := table.Match(http.MethodGet, "/api/v1/users"); ok {
			t.Error("expected no match for shorter path")
		}
		if _, _, ok := table.Match(http.MethodGet, "/api/v2/users/abc"); ok {
			t.Error("expected no match for different prefix")
		}
	})
}

func TestRoute_Expand(t *testing.T) {
	table := NewRouteTable()
	table.Add(&Route{Service: "shopcart", Method: http.MethodPost, Template: "/api/v1/carts/{user_uuid}/items"})
	table.Freeze()

	route, params, ok := table.Match(http.MethodPost, "/api/v1/carts/u-42/items")
	if !ok {
		t.Fatal("expected a match")
	}

	if got := route.Expand(params); got != "/api/v1/carts/u-42/items" {
		t.Errorf("expected expanded path /api/v1/carts/u-42/items, got %s", got)
	}
}
