package messaging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var consumerTracer = otel.Tracer("messaging/consumer")

const reconnectDelay = 5 * time.Second

type Binding struct {
	Exchange   string
	RoutingKey string
}

type ConsumerConfig struct {
	Queue    string
	Bindings []Binding
	// RequeueOnError requeues deliveries whose handler failed instead of
	// dropping them. Off by default: the historical policy is
	// at-most-once-after-first-failure, with no dead-letter queue.
	RequeueOnError bool
}

// Consumer binds one durable queue to its exchanges and processes deliveries
// one at a time (prefetch 1) with manual acknowledgment. A lost connection
// triggers a fixed-delay reconnect that re-declares the topology before
// resuming.
type Consumer struct {
	bus        *Bus
	cfg        ConsumerConfig
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewConsumer(bus *Bus, cfg ConsumerConfig, dispatcher *Dispatcher, logger *slog.Logger) *Consumer {
	return &Consumer{
		bus:        bus,
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Error("consumer disconnected, retrying", "error", err, "queue", c.cfg.Queue, "delay", reconnectDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	ch, err := c.bus.Channel(ctx)
	if err != nil {
		return err
	}

	if err := c.declareTopology(ch); err != nil {
		return err
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.logger.Info("consuming", "queue", c.cfg.Queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.process(ctx, d)
		}
	}
}

func (c *Consumer) declareTopology(ch *amqp.Channel) error {
	for _, b := range c.cfg.Bindings {
		if err := DeclareTopicExchange(ch, b.Exchange); err != nil {
			return err
		}
	}

	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return err
	}

	for _, b := range c.cfg.Bindings {
		if err := ch.QueueBind(c.cfg.Queue, b.RoutingKey, b.Exchange, false, nil); err != nil {
			return err
		}
	}

	return nil
}

func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	parentCtx := otel.GetTextMapPropagator().Extract(ctx, NewTableCarrier(d.Headers))

	spanCtx, span := consumerTracer.Start(parentCtx, "process "+c.cfg.Queue,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystemRabbitmq,
			semconv.MessagingOperationName("process"),
			semconv.MessagingOperationTypeDeliver,
			semconv.MessagingDestinationName(c.cfg.Queue),
			semconv.MessagingRabbitmqDestinationRoutingKey(d.RoutingKey),
		),
	)
	defer span.End()

	switch outcome := c.dispatcher.Dispatch(spanCtx, d.Body); outcome {
	case OutcomeAck:
		if err := d.Ack(false); err != nil {
			c.logger.Error("failed to ack delivery", "error", err, "queue", c.cfg.Queue)
		}
	case OutcomeDrop:
		span.SetStatus(codes.Error, "message dropped")
		if err := d.Nack(false, false); err != nil {
			c.logger.Error("failed to nack delivery", "error", err, "queue", c.cfg.Queue)
		}
	case OutcomeFail:
		span.SetStatus(codes.Error, "handler failed")
		if err := d.Nack(false, c.cfg.RequeueOnError); err != nil {
			c.logger.Error("failed to nack delivery", "error", err, "queue", c.cfg.Queue)
		}
	}
}
