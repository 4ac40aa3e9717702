package shopcart

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
)

type fakeCartStore struct {
	carts map[string]*domain.Cart // keyed by user uuid

	created int
	cleared map[string]int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{
		carts:   make(map[string]*domain.Cart),
		cleared: make(map[string]int),
	}
}

func (s *fakeCartStore) GetByUser(_ context.Context, userUUID string) (*domain.Cart, error) {
	return s.carts[userUUID], nil
}

func (s *fakeCartStore) Create(_ context.Context, userUUID string) (*domain.Cart, error) {
	s.created++
	cart := &domain.Cart{ID: "cart-" + userUUID, UserUUID: userUUID}
	s.carts[userUUID] = cart
	return cart, nil
}

func (s *fakeCartStore) DeleteByUser(_ context.Context, userUUID string) (bool, error) {
	if _, ok := s.carts[userUUID]; !ok {
		return false, nil
	}
	delete(s.carts, userUUID)
	return true, nil
}

func (s *fakeCartStore) ClearItems(_ context.Context, cartID string) (int64, error) {
	s.cleared[cartID]++
	return 2, nil
}

func newTestEventHandler(store CartStore) *EventHandler {
	return NewEventHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEventHandler_HandleUserCreated(t *testing.T) {
	t.Run("creates a cart for an active user", func(t *testing.T) {
		store := newFakeCartStore()
		h := newTestEventHandler(store)

		body := []byte(`{"event_type":"user.created","user_uuid":"u-1","email":"a@b.c","is_active":true}`)
		if err := h.HandleUserCreated(context.Background(), body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if store.carts["u-1"] == nil {
			t.Error("expected a cart for u-1")
		}
	})

	t.Run("is idempotent under redelivery", func(t *testing.T) {
		store := newFakeCartStore()
		h := newTestEventHandler(store)

		body := []byte(`{"event_type":"user.created","user_uuid":"u-1","is_active":true}`)
		for i := 0; i < 3; i++ {
			if err := h.HandleUserCreated(context.Background(), body); err != nil {
				t.Fatalf("unexpected error on delivery %d: %v", i, err)
			}
		}

		if store.created != 1 {
			t.Errorf("expected exactly one cart creation, got %d", store.created)
		}
	})

	t.Run("skips inactive users", func(t *testing.T) {
		store := newFakeCartStore()
		h := newTestEventHandler(store)

		body := []byte(`{"event_type":"user.created","user_uuid":"u-2","is_active":false}`)
		if err := h.HandleUserCreated(context.Background(), body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if store.created != 0 {
			t.Errorf("expected no cart, got %d creations", store.created)
		}
	})

	t.Run("rejects events without user_uuid", func(t *testing.T) {
		h := newTestEventHandler(newFakeCartStore())

		body := []byte(`{"event_type":"user.created","is_active":true}`)
		if err := h.HandleUserCreated(context.Background(), body); err == nil {
			t.Error("expected error for missing user_uuid")
		}
	})
}

func TestEventHandler_HandleShopCreated(t *testing.T) {
	t.Run("deletes the new owner's cart", func(t *testing.T) {
		store := newFakeCartStore()
		store.carts["u-1"] = &domain.Cart{ID: "c-1", UserUUID: "u-1"}
		h := newTestEventHandler(store)

		body := []byte(`{"event_type":"shop.created","user_uuid":"u-1","shop_id":"s-1"}`)
		if err := h.HandleShopCreated(context.Background(), body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if store.carts["u-1"] != nil {
			t.Error("expected cart to be deleted")
		}
	})

	t.Run("succeeds when no cart exists", func(t *testing.T) {
		h := newTestEventHandler(newFakeCartStore())

		body := []byte(`{"event_type":"shop.created","user_uuid":"u-9","shop_id":"s-1"}`)
		if err := h.HandleShopCreated(context.Background(), body); err != nil {
			t.Fatalf("expected redelivery to be harmless, got %v", err)
		}
	})
}

func TestEventHandler_HandleOrderCreated(t *testing.T) {
	t.Run("clears the ordered cart", func(t *testing.T) {
		store := newFakeCartStore()
		store.carts["u-1"] = &domain.Cart{ID: "c-1", UserUUID: "u-1"}
		h := newTestEventHandler(store)

		body := []byte(`{"event_type":"order.created","data":{"user_uuid":"u-1","cart_id":"c-1","order_id":"o-1"}}`)
		if err := h.HandleOrderCreated(context.Background(), body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if store.cleared["c-1"] != 1 {
			t.Errorf("expected cart c-1 cleared once, got %d", store.cleared["c-1"])
		}
	})

	t.Run("ignores events for a different cart", func(t *testing.T) {
		store := newFakeCartStore()
		store.carts["u-1"] = &domain.Cart{ID: "c-2", UserUUID: "u-1"}
		h := newTestEventHandler(store)

		body := []byte(`{"event_type":"order.created","data":{"user_uuid":"u-1","cart_id":"c-1","order_id":"o-1"}}`)
		if err := h.HandleOrderCreated(context.Background(), body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(store.cleared) != 0 {
			t.Errorf("expected nothing cleared, got %v", store.cleared)
		}
	})

	t.Run("rejects events missing identifiers", func(t *testing.T) {
		h := newTestEventHandler(newFakeCartStore())

		body := []byte(`{"event_type":"order.created","data":{"user_uuid":"u-1"}}`)
		if err := h.HandleOrderCreated(context.Background(), body); err == nil {
			t.Error("expected error for missing cart_id")
		}
	})
}
