package users

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

type fakeUserStore struct {
	owners map[string]bool // known users, true once marked
}

func (s *fakeUserStore) MarkShopOwner(_ context.Context, userUUID string) (bool, error) {
	if _, ok := s.owners[userUUID]; !ok {
		return false, nil
	}
	s.owners[userUUID] = true
	return true, nil
}

func TestEventHandler_HandleShopCreated(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("marks the owner", func(t *testing.T) {
		store := &fakeUserStore{owners: map[string]bool{"u-1": false}}
		h := NewEventHandler(store, logger)

		body := []byte(`{"event_type":"shop.created","user_uuid":"u-1","shop_id":"s-1"}`)
		if err := h.HandleShopCreated(context.Background(), body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !store.owners["u-1"] {
			t.Error("expected u-1 to be marked as shop owner")
		}
	})

	t.Run("fails for an unknown user so the delivery can retry", func(t *testing.T) {
		store := &fakeUserStore{owners: map[string]bool{}}
		h := NewEventHandler(store, logger)

		body := []byte(`{"event_type":"shop.created","user_uuid":"u-404","shop_id":"s-1"}`)
		if err := h.HandleShopCreated(context.Background(), body); err == nil {
			t.Error("expected error for unknown user")
		}
	})

	t.Run("rejects events without user_uuid", func(t *testing.T) {
		h := NewEventHandler(&fakeUserStore{owners: map[string]bool{}}, logger)

		body := []byte(`{"event_type":"shop.created","shop_id":"s-1"}`)
		if err := h.HandleShopCreated(context.Background(), body); err == nil {
			t.Error("expected error for missing user_uuid")
		}
	})
}
