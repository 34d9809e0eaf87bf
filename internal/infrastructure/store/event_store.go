package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrVersionConflict = errors.New("event version conflict")

// Event represents a domain event
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
}

func newEvent(aggregateID, aggregateType, eventType string, data any, version int) (Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s: %w", eventType, err)
	}
	return Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now().UTC(),
		Version:       version,
	}, nil
}

// EventStore keeps events in memory and publishes them after each append.
type EventStore struct {
	mu        sync.RWMutex
	events    map[string][]Event // aggregateID -> events
	publisher Publisher
}

// NewEventStore returns an in-memory store. publisher may be nil.
func NewEventStore(publisher Publisher) *EventStore {
	return &EventStore{
		events:    make(map[string][]Event),
		publisher: publisher,
	}
}

// Append stores an event and publishes it
func (es *EventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	es.mu.Lock()
	event, err := newEvent(aggregateID, aggregateType, eventType, data, len(es.events[aggregateID])+1)
	if err != nil {
		es.mu.Unlock()
		return nil, err
	}
	es.events[aggregateID] = append(es.events[aggregateID], event)
	es.mu.Unlock()

	if es.publisher != nil {
		if err := es.publisher.Publish(ctx, aggregateID, event); err != nil {
			return nil, fmt.Errorf("publish %s: %w", eventType, err)
		}
	}
	return &event, nil
}

// GetEvents returns all events for an aggregate in version order
func (es *EventStore) GetEvents(ctx context.Context, aggregateID string) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return slices.Clone(es.events[aggregateID]), nil
}
