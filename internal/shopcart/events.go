package shopcart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
	"github.com/ilhamdjango/ecommerce-core/internal/messaging"
)

// Queue and bindings for the shopcart consumer. The routing keys are the
// literal event type strings.
var ConsumerConfig = messaging.ConsumerConfig{
	Queue: "shopcart_events",
	Bindings: []messaging.Binding{
		{Exchange: domain.UserExchange, RoutingKey: domain.EventUserCreated},
		{Exchange: domain.OrderExchange, RoutingKey: domain.EventOrderCreated},
		{Exchange: domain.ShopExchange, RoutingKey: domain.EventShopCreated},
	},
}

// CartStore is the slice of cart persistence the event handlers mutate.
type CartStore interface {
	GetByUser(ctx context.Context, userUUID string) (*domain.Cart, error)
	Create(ctx context.Context, userUUID string) (*domain.Cart, error)
	DeleteByUser(ctx context.Context, userUUID string) (bool, error)
	ClearItems(ctx context.Context, cartID string) (int64, error)
}

// EventHandler applies remote domain events to local cart state. Every
// handler is idempotent under redelivery: idempotency is checked against
// domain keys, not message ids.
type EventHandler struct {
	store  CartStore
	logger *slog.Logger
}

func NewEventHandler(store CartStore, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		store:  store,
		logger: logger,
	}
}

func (h *EventHandler) Register(d *messaging.Dispatcher) {
	d.Handle(domain.EventUserCreated, h.HandleUserCreated)
	d.Handle(domain.EventShopCreated, h.HandleShopCreated)
	d.Handle(domain.EventOrderCreated, h.HandleOrderCreated)
}

// HandleUserCreated creates exactly one cart for an active user. Replays see
// the existing cart and no-op.
func (h *EventHandler) HandleUserCreated(ctx context.Context, body []byte) error {
	var event domain.UserCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal user created event: %w", err)
	}
	if event.UserUUID == "" {
		return errors.New("user.created event missing user_uuid")
	}

	if !event.IsActive {
		h.logger.Info("skipping cart creation for inactive user", "user_uuid", event.UserUUID)
		return nil
	}

	existing, err := h.store.GetByUser(ctx, event.UserUUID)
	if err != nil {
		return fmt.Errorf("lookup cart for user %s: %w", event.UserUUID, err)
	}
	if existing != nil {
		h.logger.Info("cart already exists", "user_uuid", event.UserUUID, "cart_id", existing.ID)
		return nil
	}

	cart, err := h.store.Create(ctx, event.UserUUID)
	if err != nil {
		return fmt.Errorf("create cart for user %s: %w", event.UserUUID, err)
	}

	h.logger.Info("cart created", "user_uuid", event.UserUUID, "cart_id", cart.ID)
	return nil
}

// HandleShopCreated deletes the new shop owner's cart. Sellers do not shop;
// the invariant holds eventually, once this event is processed.
func (h *EventHandler) HandleShopCreated(ctx context.Context, body []byte) error {
	var event domain.ShopCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal shop created event: %w", err)
	}
	if event.UserUUID == "" {
		return errors.New("shop.created event missing user_uuid")
	}

	deleted, err := h.store.DeleteByUser(ctx, event.UserUUID)
	if err != nil {
		return fmt.Errorf("delete cart for shop owner %s: %w", event.UserUUID, err)
	}

	if deleted {
		h.logger.Info("deleted cart for new shop owner", "user_uuid", event.UserUUID, "shop_id", event.ShopID)
	} else {
		h.logger.Info("no cart to delete for new shop owner", "user_uuid", event.UserUUID, "shop_id", event.ShopID)
	}
	return nil
}

// HandleOrderCreated clears the ordered cart's items. A missing cart means
// the order already proceeded elsewhere; cleanup is best-effort.
func (h *EventHandler) HandleOrderCreated(ctx context.Context, body []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}
	if event.Data.UserUUID == "" || event.Data.CartID == "" {
		return errors.New("order.created event missing user_uuid or cart_id")
	}

	cart, err := h.store.GetByUser(ctx, event.Data.UserUUID)
	if err != nil {
		return fmt.Errorf("lookup cart for user %s: %w", event.Data.UserUUID, err)
	}
	if cart == nil || cart.ID != event.Data.CartID {
		h.logger.Info("cart not found, nothing to clear",
			"user_uuid", event.Data.UserUUID, "cart_id", event.Data.CartID, "order_id", event.Data.OrderID)
		return nil
	}

	cleared, err := h.store.ClearItems(ctx, cart.ID)
	if err != nil {
		return fmt.Errorf("clear cart %s: %w", cart.ID, err)
	}

	h.logger.Info("cart cleared after order", "cart_id", cart.ID, "order_id", event.Data.OrderID, "items_cleared", cleared)
	return nil
}
