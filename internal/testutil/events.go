package testutil

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/campus-records-service/internal/events"
)

// MockEventPublisher is an events.EventPublisher that records events in memory
type MockEventPublisher struct {
	mu        sync.Mutex
	published []*events.Event
	logger    *slog.Logger
	err       error
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, event)
	m.logger.DebugContext(ctx, "Mock event published", "event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// FailWith makes subsequent Publish calls return err
func (m *MockEventPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockEventPublisher) GetPublishedEvents() []*events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*events.Event, len(m.published))
	copy(out, m.published)
	return out
}

// EventsOfType filters the recorded events
func (m *MockEventPublisher) EventsOfType(eventType events.EventType) []*events.Event {
	var out []*events.Event
	for _, e := range m.GetPublishedEvents() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = nil
}
