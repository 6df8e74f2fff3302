// Package events defines the lifecycle notifications the definition service
// publishes so downstream consumers (the helpdesk backend, audit trails) can
// react to workflow definition changes.
package events

import (
	"time"

	"github.com/hdts/flowkit/pkg/models"
)

// EventType identifies one kind of definition lifecycle event.
type EventType string

// Topic is the single stream all definition events are published on.
const Topic = "flowkit.definitions"

// Message metadata keys.
const (
	EventMetadataKey     = "key"
	EventTypeMetadataKey = "event_type"
)

const (
	WorkflowCreatedEvent   EventType = "workflow.definition.created"
	WorkflowUpdatedEvent   EventType = "workflow.definition.updated"
	WorkflowDeletedEvent   EventType = "workflow.definition.deleted"
	WorkflowPublishedEvent EventType = "workflow.definition.published"
)

// BaseEvent carries the fields shared by every definition event.
type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
}

// WorkflowCreated is published after a definition is first saved.
type WorkflowCreated struct {
	BaseEvent

	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
}

func (e WorkflowCreated) GetType() EventType { return WorkflowCreatedEvent }

// WorkflowUpdated is published after any edit to an existing definition.
type WorkflowUpdated struct {
	BaseEvent

	Name string `json:"name"`
}

func (e WorkflowUpdated) GetType() EventType { return WorkflowUpdatedEvent }

// WorkflowDeleted is published after a definition is removed.
type WorkflowDeleted struct {
	BaseEvent
}

func (e WorkflowDeleted) GetType() EventType { return WorkflowDeletedEvent }

// WorkflowPublished is published when a draft passes validation and becomes
// active. It carries the full wire payload consumers apply to new tickets.
type WorkflowPublished struct {
	BaseEvent

	Name    string                `json:"name"`
	Status  models.WorkflowStatus `json:"status"`
	Payload any                   `json:"payload,omitempty"`
}

func (e WorkflowPublished) GetType() EventType { return WorkflowPublishedEvent }
