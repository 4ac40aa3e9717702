package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Outcome decides what happens to a delivery after dispatch.
type Outcome int

const (
	// OutcomeAck acknowledges the delivery.
	OutcomeAck Outcome = iota
	// OutcomeDrop rejects the delivery without requeue regardless of consumer
	// configuration. Used for poison messages that can never succeed.
	OutcomeDrop
	// OutcomeFail rejects the delivery; whether it is requeued is the
	// consumer's RequeueOnError policy.
	OutcomeFail
)

type HandlerFunc func(ctx context.Context, body []byte) error

// Dispatcher routes deliveries to handlers by the envelope's event_type.
// Unknown event types are acknowledged without action so producers can evolve
// their schemas ahead of consumers.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
}

func (d *Dispatcher) Handle(eventType string, h HandlerFunc) {
	d.handlers[eventType] = h
}

func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) Outcome {
	var env struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		d.logger.Warn("dropping malformed message", "error", err)
		return OutcomeDrop
	}

	handler, ok := d.handlers[env.EventType]
	if !ok {
		d.logger.Info("ignoring unknown event type", "event_type", env.EventType)
		return OutcomeAck
	}

	if err := handler(ctx, body); err != nil {
		d.logger.Error("event handler failed", "event_type", env.EventType, "error", err)
		return OutcomeFail
	}

	return OutcomeAck
}
