package events

import (
	"context"
	"log/slog"
	"sync"
)

// MockEventPublisher records published events for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []*Event
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	if m.logger != nil {
		m.logger.DebugContext(ctx, "Mock event published",
			"event_type", event.Type,
			"event_id", event.ID)
	}
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// GetPublishedEvents returns a copy of everything published so far.
func (m *MockEventPublisher) GetPublishedEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Event, len(m.events))
	copy(out, m.events)
	return out
}

// ClearEvents resets the recorded events.
func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
