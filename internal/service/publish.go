package service

import (
	"context"
	"log/slog"

	"tiny-ledger/internal/events"
)

// publish runs after the ledger change has committed, from an AfterCommit hook
// when the change touched account balances. A failed publish is logged and
// never reported to the caller.
func publish(ctx context.Context, publisher events.Publisher, logger *slog.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish ledger event",
			"event_type", event.Type,
			"aggregate_id", event.AggregateID,
			"error", err)
	}
}
