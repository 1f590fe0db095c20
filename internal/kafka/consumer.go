package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/elysium-stays/bookingledger/internal/ledger"
	"github.com/segmentio/kafka-go"
)

// eventReader is the slice of kafka.Reader the consumer needs, so tests can
// feed messages without a broker.
type eventReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// EventConsumer reads booking events off a topic and hands them, decoded, to
// a handler. Messages that fail to decode are logged and skipped; a handler
// error stops consumption.
type EventConsumer struct {
	reader eventReader
}

func NewEventConsumer(brokers []string, groupID, topic string) *EventConsumer {
	return &EventConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *EventConsumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *EventConsumer) Consume(ctx context.Context, handler func(context.Context, ledger.Event) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var event ledger.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("WARNING: skipping undecodable event at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}
