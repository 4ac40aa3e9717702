package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
	"github.com/ilhamdjango/ecommerce-core/internal/messaging"
)

var ConsumerConfig = messaging.ConsumerConfig{
	Queue: "user_shop_events",
	Bindings: []messaging.Binding{
		{Exchange: domain.ShopExchange, RoutingKey: domain.EventShopCreated},
	},
}

// UserStore is the slice of user persistence the event handler mutates.
type UserStore interface {
	MarkShopOwner(ctx context.Context, userUUID string) (bool, error)
}

type EventHandler struct {
	store  UserStore
	logger *slog.Logger
}

func NewEventHandler(store UserStore, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		store:  store,
		logger: logger,
	}
}

func (h *EventHandler) Register(d *messaging.Dispatcher) {
	d.Handle(domain.EventShopCreated, h.HandleShopCreated)
}

// HandleShopCreated marks the shop's owner in the local user store. The flag
// flip is idempotent, so redeliveries are harmless.
func (h *EventHandler) HandleShopCreated(ctx context.Context, body []byte) error {
	var event domain.ShopCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal shop created event: %w", err)
	}
	if event.UserUUID == "" {
		return errors.New("shop.created event missing user_uuid")
	}

	found, err := h.store.MarkShopOwner(ctx, event.UserUUID)
	if err != nil {
		return fmt.Errorf("mark user %s as shop owner: %w", event.UserUUID, err)
	}
	if !found {
		return fmt.Errorf("user %s not found", event.UserUUID)
	}

	h.logger.Info("user marked as shop owner", "user_uuid", event.UserUUID, "shop_id", event.ShopID)
	return nil
}
