// Package events defines the lifecycle events published when workflows,
// jobs, or derived conflicts change.
package events

import (
	"time"

	"github.com/scrapeflow/scrapeflow/pkg/models"
)

// EventType identifies one lifecycle event kind.
type EventType string

// Topic carries all scrapeflow lifecycle events.
const Topic = "scrapeflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowCreatedEvent EventType = "workflow.created"
	WorkflowUpdatedEvent EventType = "workflow.updated"
	WorkflowDeletedEvent EventType = "workflow.deleted"

	JobCreatedEvent EventType = "job.created"
	JobUpdatedEvent EventType = "job.updated"
	JobDeletedEvent EventType = "job.deleted"

	ConflictsDetectedEvent EventType = "conflicts.detected"
)

// BaseEvent carries the fields shared by every event.
type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type WorkflowCreated struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
	Name       string `json:"name"`
}

func (e WorkflowCreated) GetType() EventType { return WorkflowCreatedEvent }

type WorkflowUpdated struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
	// Change names the mutation applied: "update", "node.added",
	// "node.removed", "node.patched", "connection.added",
	// "connection.removed".
	Change string `json:"change"`
}

func (e WorkflowUpdated) GetType() EventType { return WorkflowUpdatedEvent }

type WorkflowDeleted struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
}

func (e WorkflowDeleted) GetType() EventType { return WorkflowDeletedEvent }

type JobCreated struct {
	BaseEvent

	JobID      string `json:"job_id"`
	WorkflowID string `json:"workflow_id"`
	Name       string `json:"name"`
}

func (e JobCreated) GetType() EventType { return JobCreatedEvent }

type JobUpdated struct {
	BaseEvent

	JobID string `json:"job_id"`
}

func (e JobUpdated) GetType() EventType { return JobUpdatedEvent }

type JobDeleted struct {
	BaseEvent

	JobID string `json:"job_id"`
}

func (e JobDeleted) GetType() EventType { return JobDeletedEvent }

// ConflictsDetected reports the outcome of a conflict recomputation over the
// full job collection.
type ConflictsDetected struct {
	BaseEvent

	JobCount  int               `json:"job_count"`
	Conflicts []models.Conflict `json:"conflicts"`
}

func (e ConflictsDetected) GetType() EventType { return ConflictsDetectedEvent }
