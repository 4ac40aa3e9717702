package messaging

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Bus owns one AMQP connection and channel, shared by the publishers and
// consumers of a process. It is constructed explicitly and injected; there is
// no package-level singleton and no connection-per-call.
type Bus struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewBus(url string) *Bus {
	return &Bus{url: url}
}

// Channel returns the live channel, dialing (or redialing after a broker
// restart) as needed. Topology is not declared here; every participant
// declares its own exchanges and queues idempotently.
func (b *Bus) Channel(ctx context.Context) (*amqp.Channel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil && !b.conn.IsClosed() && b.ch != nil && !b.ch.IsClosed() {
		return b.ch, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(b.url, amqp.Config{
		Heartbeat: 10 * time.Minute,
		Dial:      amqp.DefaultDial(30 * time.Second),
	})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	b.conn = conn
	b.ch = ch
	return ch, nil
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ch != nil {
		_ = b.ch.Close()
		b.ch = nil
	}
	if b.conn != nil {
		err := b.conn.Close()
		b.conn = nil
		return err
	}
	return nil
}

// DeclareTopicExchange declares a durable topic exchange. Redeclaring an
// existing exchange with the same arguments is a no-op on the broker.
func DeclareTopicExchange(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(name, "topic", true, false, false, false, nil)
}
