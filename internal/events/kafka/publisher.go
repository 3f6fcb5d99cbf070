package kafka

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"tiny-ledger/internal/events"
)

type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher writes ledger events to topic. Writes are asynchronous so a
// slow broker never holds up a ledger operation; delivery failures are logged.
// The hash balancer sends every message with the same key to the same
// partition.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	p := &Publisher{logger: logger}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion:             p.completion,
	}
	return p
}

func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	msg, err := newMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) completion(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	p.logger.Error("Failed to deliver ledger events", "count", len(messages), "error", err)
}

// newMessage keys by aggregate id. With the hash balancer and publishes made
// under the account lock, one account's events land on a single partition in
// commit order.
func newMessage(event events.Event) (kafka.Message, error) {
	value, err := events.Encode(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "event-id", Value: []byte(event.ID)},
		},
		Time: event.OccurredAt,
	}, nil
}

var _ events.Publisher = (*Publisher)(nil)
