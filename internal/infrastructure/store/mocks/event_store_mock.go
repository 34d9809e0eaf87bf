package mocks

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

// AppendCall records one Append.
type AppendCall struct {
	AggregateID   string
	AggregateType string
	EventType     string
	Data          any
}

// MockEventStore keeps events in memory and records appends. Set AppendErr
// or GetEventsErr to make the next calls fail.
type MockEventStore struct {
	mu     sync.RWMutex
	events map[string][]store.Event

	AppendCalls  []AppendCall
	AppendErr    error
	GetEventsErr error
}

func NewMockEventStore() *MockEventStore {
	return &MockEventStore{events: make(map[string][]store.Event)}
}

func (m *MockEventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls = append(m.AppendCalls, AppendCall{aggregateID, aggregateType, eventType, data})
	if m.AppendErr != nil {
		return nil, m.AppendErr
	}
	e, err := m.store(aggregateID, aggregateType, eventType, data)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (m *MockEventStore) GetEvents(ctx context.Context, aggregateID string) ([]store.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetEventsErr != nil {
		return nil, m.GetEventsErr
	}
	return slices.Clone(m.events[aggregateID]), nil
}

// AddEvent seeds an event without recording an Append.
func (m *MockEventStore) AddEvent(aggregateID, aggregateType, eventType string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.store(aggregateID, aggregateType, eventType, data)
	return err
}

// EventTypes lists the stored event types of an aggregate in order.
func (m *MockEventStore) EventTypes(aggregateID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var types []string
	for _, e := range m.events[aggregateID] {
		types = append(types, e.EventType)
	}
	return types
}

// store must be called with mu held.
func (m *MockEventStore) store(aggregateID, aggregateType, eventType string, data any) (store.Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return store.Event{}, err
	}
	e := store.Event{
		ID:            uuid.NewString(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          raw,
		Timestamp:     time.Now().UTC(),
		Version:       len(m.events[aggregateID]) + 1,
	}
	m.events[aggregateID] = append(m.events[aggregateID], e)
	return e, nil
}
