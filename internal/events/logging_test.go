package events

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"taskboard_backend/platform/logger"
)

// recordingHandler captures the "event" attribute of every log record.
type recordingHandler struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	var name string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "event" {
			name = a.Value.String()
			return false
		}
		return true
	})
	h.mu.Lock()
	h.events = append(h.events, name)
	h.mu.Unlock()
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestRegisterLoggingHandlersCoversEveryDomainEvent(t *testing.T) {
	recorder := &recordingHandler{}
	log := &logger.Logger{Logger: slog.New(recorder)}
	bus := NewInMemoryBus(log)

	RegisterLoggingHandlers(bus, log)

	published := []Event{
		UserSignedUp{BaseEvent: NewBaseEvent(), UserID: 1, Email: "a@b.test"},
		BoardCreated{BaseEvent: NewBaseEvent(), BoardID: 2, ProjectID: 3, CreatedBy: 1},
		BoardMemberAdded{BaseEvent: NewBaseEvent(), BoardID: 2, UserID: 4, AddedBy: 1},
		CardCreated{BaseEvent: NewBaseEvent(), CardID: 5, BoardID: 2, ListID: 6, CreatedBy: 1},
		CardDeleted{BaseEvent: NewBaseEvent(), CardID: 5, BoardID: 2, DeletedBy: 1},
	}
	for _, event := range published {
		if err := bus.PublishSync(context.Background(), event); err != nil {
			t.Fatalf("publish %s: %v", event.EventName(), err)
		}
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.events) != len(published) {
		t.Fatalf("expected %d log lines, got %d", len(published), len(recorder.events))
	}
	for i, event := range published {
		if recorder.events[i] != event.EventName() {
			t.Fatalf("expected %q logged at %d, got %q", event.EventName(), i, recorder.events[i])
		}
	}
}
