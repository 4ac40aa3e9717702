package messaging

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var publisherTracer = otel.Tracer("messaging/publisher")

// Publisher emits domain events to one topic exchange. Publishing is
// fire-and-forget at call sites: a local state change is never rolled back
// because its event could not be published.
type Publisher struct {
	bus      *Bus
	exchange string
}

func NewPublisher(bus *Bus, exchange string) *Publisher {
	return &Publisher{
		bus:      bus,
		exchange: exchange,
	}
}

// Publish marshals the event and sends it with persistent delivery so the
// broker keeps it across restarts. The exchange is declared on every publish;
// declares are idempotent.
func (p *Publisher) Publish(ctx context.Context, routingKey string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ch, err := p.bus.Channel(ctx)
	if err != nil {
		return err
	}

	if err := DeclareTopicExchange(ch, p.exchange); err != nil {
		return err
	}

	ctx, span := publisherTracer.Start(ctx, "send "+p.exchange,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemRabbitmq,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.exchange),
			semconv.MessagingRabbitmqDestinationRoutingKey(routingKey),
		),
	)
	defer span.End()

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, NewTableCarrier(headers))

	err = ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		Headers:      headers,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         data,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
