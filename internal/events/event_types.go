package events

import (
	"time"

	"github.com/spec-kit/contest-provisioner/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBatchStarted    EventType = "batch_started"
	EventRecordProcessed EventType = "record_processed"
	EventBatchFinished   EventType = "batch_finished"
)

// Event represents a progress event emitted by the orchestrator.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RunID     string      `json:"run_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BatchStartedPayload payload.
type BatchStartedPayload struct {
	ContestID string `json:"contest_id"`
	Total     int    `json:"total"`
}

// RecordProcessedPayload payload. Index is 1-based.
type RecordProcessedPayload struct {
	Index   int                     `json:"index"`
	Total   int                     `json:"total"`
	Outcome domain.ProvisionOutcome `json:"-"`
}

// BatchFinishedPayload payload.
type BatchFinishedPayload struct {
	Summary   domain.Summary `json:"summary"`
	Cancelled bool           `json:"cancelled"`
}
