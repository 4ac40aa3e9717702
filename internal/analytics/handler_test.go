package analytics

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestHandler(store Store, fetcher VariationFetcher) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(NewService(store, fetcher, logger), logger)
}

func TestHandler_HandleOrderCompleted(t *testing.T) {
	snapshot := `{"id":"o-1","user_id":"u-1","items":[{"id":"i-1","product_variation":"v-1","quantity":1,"price":10}]}`

	t.Run("answers 201 for a new order", func(t *testing.T) {
		handler := newTestHandler(newFakeStore(), &fakeFetcher{variations: map[string]*ProductVariation{"v-1": {}}})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/order-completed", strings.NewReader(snapshot))
		rec := httptest.NewRecorder()

		handler.HandleOrderCompleted(rec, req)

		if rec.Code != http.StatusCreated {
			t.Errorf("expected status 201, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "success" || resp["order_id"] != "o-1" {
			t.Errorf("unexpected body: %v", resp)
		}
	})

	t.Run("answers 200 for a replayed order", func(t *testing.T) {
		store := newFakeStore()
		handler := newTestHandler(store, &fakeFetcher{variations: map[string]*ProductVariation{"v-1": {}}})

		for _, want := range []int{http.StatusCreated, http.StatusOK} {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/order-completed", strings.NewReader(snapshot))
			rec := httptest.NewRecorder()

			handler.HandleOrderCompleted(rec, req)

			if rec.Code != want {
				t.Errorf("expected status %d, got %d", want, rec.Code)
			}
		}
	})

	t.Run("answers 400 for malformed JSON", func(t *testing.T) {
		handler := newTestHandler(newFakeStore(), &fakeFetcher{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/order-completed", strings.NewReader(`{broken`))
		rec := httptest.NewRecorder()

		handler.HandleOrderCompleted(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("answers 400 when identifiers are missing", func(t *testing.T) {
		handler := newTestHandler(newFakeStore(), &fakeFetcher{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/order-completed", strings.NewReader(`{"id":"o-1"}`))
		rec := httptest.NewRecorder()

		handler.HandleOrderCompleted(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["status"] != "error" {
			t.Errorf("unexpected body: %v", resp)
		}
	})
}

func TestProductClient_GetVariation(t *testing.T) {
	t.Run("decodes the variation and falls back to the original price", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/products/variations/v-1" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"base_price": 0,
				"original_price": 25.5,
				"size": "L",
				"color": "blue",
				"product": {"title": "Jacket", "sku": "JK-9", "shop_id": "s-2"}
			}`))
		}))
		defer server.Close()

		client := NewProductClient(server.URL, server.Client())
		variation, err := client.GetVariation(context.Background(), "v-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if variation.BasePrice != 25.5 {
			t.Errorf("expected base price fallback to 25.5, got %v", variation.BasePrice)
		}
		if variation.ProductTitle != "Jacket" || variation.ShopID != "s-2" {
			t.Errorf("unexpected variation: %+v", variation)
		}
	})

	t.Run("errors on non-200 responses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewProductClient(server.URL, server.Client())
		if _, err := client.GetVariation(context.Background(), "v-404"); err == nil {
			t.Error("expected error for 404")
		}
	})
}
