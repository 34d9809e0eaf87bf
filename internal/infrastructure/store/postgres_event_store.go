package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code raised when two appends race
// for the same aggregate version.
const uniqueViolation = "23505"

// PostgresEventStore stores events in PostgreSQL
type PostgresEventStore struct {
	db        *sql.DB
	publisher Publisher
}

func NewPostgresEventStore(db *sql.DB, publisher Publisher) *PostgresEventStore {
	return &PostgresEventStore{
		db:        db,
		publisher: publisher,
	}
}

// Append stores an event in PostgreSQL and publishes it
func (es *PostgresEventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	var currentVersion int
	err := es.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = $1",
		aggregateID,
	).Scan(&currentVersion)
	if err != nil {
		return nil, fmt.Errorf("read version of %s: %w", aggregateID, err)
	}

	event, err := newEvent(aggregateID, aggregateType, eventType, data, currentVersion+1)
	if err != nil {
		return nil, err
	}

	_, err = es.db.ExecContext(ctx,
		`INSERT INTO events (id, aggregate_id, aggregate_type, event_type, data, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID,
		event.AggregateID,
		event.AggregateType,
		event.EventType,
		[]byte(event.Data),
		event.Version,
		event.Timestamp,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s version %d", ErrVersionConflict, aggregateID, event.Version)
		}
		return nil, fmt.Errorf("insert %s: %w", eventType, err)
	}

	if es.publisher != nil {
		if err := es.publisher.Publish(ctx, aggregateID, event); err != nil {
			return nil, fmt.Errorf("publish %s: %w", eventType, err)
		}
	}
	return &event, nil
}

// GetEvents returns all events for an aggregate from PostgreSQL
func (es *PostgresEventStore) GetEvents(ctx context.Context, aggregateID string) ([]Event, error) {
	rows, err := es.db.QueryContext(ctx,
		`SELECT id, aggregate_id, aggregate_type, event_type, data, version, created_at
		 FROM events
		 WHERE aggregate_id = $1
		 ORDER BY version ASC`,
		aggregateID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events of %s: %w", aggregateID, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Data, &e.Version, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
