package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event types routed over the bus. Routing keys match these literal strings.
const (
	EventUserCreated    = "user.created"
	EventShopCreated    = "shop.created"
	EventOrderCreated   = "order.created"
	EventOrderCompleted = "order.completed"
)

// Topic exchanges, one per producing service.
const (
	UserExchange  = "user_events"
	ShopExchange  = "shop_events"
	OrderExchange = "order_events"
)

// Envelope is the common header of every message on the bus. EventID and
// EmittedAt are informational; idempotency is keyed on domain identifiers
// carried in the payload, not on the event id.
type Envelope struct {
	EventID   string    `json:"event_id,omitempty"`
	EventType string    `json:"event_type"`
	EmittedAt time.Time `json:"emitted_at,omitempty"`
}

func NewEnvelope(eventType string) Envelope {
	return Envelope{
		EventID:   uuid.New().String(),
		EventType: eventType,
		EmittedAt: time.Now().UTC(),
	}
}

type UserCreatedEvent struct {
	Envelope
	UserUUID string `json:"user_uuid"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type ShopCreatedEvent struct {
	Envelope
	UserUUID string `json:"user_uuid"`
	ShopID   string `json:"shop_id"`
}

type OrderCreatedEvent struct {
	Envelope
	Data OrderCreatedData `json:"data"`
}

type OrderCreatedData struct {
	UserUUID string `json:"user_uuid"`
	CartID   string `json:"cart_id"`
	OrderID  string `json:"order_id"`
}

// OrderCompletedEvent carries a full order snapshot so analytics can ingest
// without calling back into the order service.
type OrderCompletedEvent struct {
	Envelope
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	CreatedAt time.Time            `json:"created_at"`
	Items     []OrderCompletedItem `json:"items"`
}

type OrderCompletedItem struct {
	ID               string  `json:"id"`
	ProductVariation string  `json:"product_variation"`
	Quantity         int     `json:"quantity"`
	Price            float64 `json:"price"`
}
