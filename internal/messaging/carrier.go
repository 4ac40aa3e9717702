package messaging

import amqp "github.com/rabbitmq/amqp091-go"

// TableCarrier adapts an AMQP header table to the OpenTelemetry propagation
// carrier interface.
type TableCarrier struct {
	table amqp.Table
}

func NewTableCarrier(table amqp.Table) *TableCarrier {
	return &TableCarrier{table: table}
}

func (c *TableCarrier) Get(key string) string {
	if v, ok := c.table[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (c *TableCarrier) Set(key, value string) {
	c.table[key] = value
}

func (c *TableCarrier) Keys() []string {
	keys := make([]string, 0, len(c.table))
	for k := range c.table {
		keys = append(keys, k)
	}
	return keys
}
