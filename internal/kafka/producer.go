package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elysium-stays/bookingledger/internal/ledger"
	"github.com/segmentio/kafka-go"
)

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// EventNotifier publishes ledger events to a topic, keyed by booking id so
// all events for one booking land on the same partition.
type EventNotifier struct {
	producer *Producer
	topic    string
}

func NewEventNotifier(producer *Producer, topic string) *EventNotifier {
	return &EventNotifier{producer: producer, topic: topic}
}

func (n *EventNotifier) Notify(ctx context.Context, event ledger.Event) error {
	if n.producer == nil || n.topic == "" {
		return nil
	}
	return n.producer.Publish(ctx, n.topic, event.BookingID, event)
}

var _ ledger.Notifier = (*EventNotifier)(nil)
