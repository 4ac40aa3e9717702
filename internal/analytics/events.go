package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
	"github.com/ilhamdjango/ecommerce-core/internal/messaging"
)

var ConsumerConfig = messaging.ConsumerConfig{
	Queue: "analytics_events",
	Bindings: []messaging.Binding{
		{Exchange: domain.OrderExchange, RoutingKey: domain.EventOrderCompleted},
	},
}

type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EventHandler) Register(d *messaging.Dispatcher) {
	d.Handle(domain.EventOrderCompleted, h.HandleOrderCompleted)
}

func (h *EventHandler) HandleOrderCompleted(ctx context.Context, body []byte) error {
	var event domain.OrderCompletedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal order completed event: %w", err)
	}

	if _, err := h.service.ProcessOrderCompleted(ctx, event); err != nil {
		return err
	}
	return nil
}
