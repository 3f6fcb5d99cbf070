package kafka

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiny-ledger/internal/events"
)

func TestNewMessage(t *testing.T) {
	e := events.Event{
		ID:          "evt-9",
		Type:        events.TransferCompleted,
		AggregateID: "acc-42",
		OccurredAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Payload:     map[string]string{"amount": "40.00"},
	}

	msg, err := newMessage(e)
	require.NoError(t, err)

	assert.Equal(t, []byte("acc-42"), msg.Key)
	assert.Equal(t, e.OccurredAt, msg.Time)

	want, err := events.Encode(e)
	require.NoError(t, err)
	assert.Equal(t, want, msg.Value)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, events.TransferCompleted, headers["event-type"])
	assert.Equal(t, "evt-9", headers["event-id"])
}

func TestNewPublisherConfiguresWriter(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "ledger-events", slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, "ledger-events", p.writer.Topic)
	assert.True(t, p.writer.Async)
	assert.Equal(t, "localhost:9092", p.writer.Addr.String())
	assert.IsType(t, &kafka.Hash{}, p.writer.Balancer)
	assert.NoError(t, p.Close())
}

func TestSameAccountMapsToOnePartition(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "ledger-events", slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer p.Close()

	partitions := []int{0, 1, 2}
	used := map[int]bool{}
	for _, eventType := range []string{events.TransactionRecorded, events.TransferCompleted, events.TransactionRecorded} {
		for i := 0; i < 2; i++ {
			msg, err := newMessage(events.New(eventType, "acc-42", map[string]int{"seq": i}))
			require.NoError(t, err)
			used[p.writer.Balancer.Balance(msg, partitions...)] = true
		}
	}
	assert.Len(t, used, 1, "same aggregate key spread over %d partitions", len(used))
}
