// Package broker notifies downstream dashboard consumers that a fresh
// set of derived tables is available.
package broker

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventTypeTablesRefreshed marks a completed pipeline run.
const EventTypeTablesRefreshed = "TABLES_REFRESHED"

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// TablesRefreshedEvent published after a successful pipeline run.
type TablesRefreshedEvent struct {
	BaseEvent
	RunID      string         `json:"run_id"`
	RowCounts  map[string]int `json:"row_counts"`
	DurationMS int64          `json:"duration_ms"`
}

// EventPublisher handles publishing pipeline events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishTablesRefreshed publishes a TablesRefreshed event keyed by run
// id, so consumers can dedupe retried runs.
func (ep *EventPublisher) PublishTablesRefreshed(ctx context.Context, runID string, rowCounts map[string]int, elapsed time.Duration) error {
	event := &TablesRefreshedEvent{
		BaseEvent: BaseEvent{
			EventID:   uuid.New().String(),
			EventType: EventTypeTablesRefreshed,
			Timestamp: time.Now(),
		},
		RunID:      runID,
		RowCounts:  rowCounts,
		DurationMS: elapsed.Milliseconds(),
	}
	return ep.producer.PublishEvent(ctx, "run-"+runID, event)
}
