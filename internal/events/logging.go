package events

import (
	"context"

	"taskboard_backend/platform/logger"
)

// RegisterLoggingHandlers subscribes an audit handler for every domain event
// so each publish leaves a structured log line.
func RegisterLoggingHandlers(bus Bus, log *logger.Logger) {
	names := []string{
		UserSignedUp{}.EventName(),
		BoardCreated{}.EventName(),
		BoardMemberAdded{}.EventName(),
		CardCreated{}.EventName(),
		CardDeleted{}.EventName(),
	}

	handler := HandlerFunc(func(ctx context.Context, event Event) error {
		log.Info("domain event", "event", event.EventName(), "occurredAt", event.OccurredAt())
		return nil
	})
	for _, name := range names {
		bus.Subscribe(name, handler)
	}
}
