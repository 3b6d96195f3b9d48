package domain

import (
	"context"
	"time"
)

// ContextName tags every event emitted by this bounded context so a
// consuming router can dispatch on context+type alone.
const ContextName = "jobs"

// Event types emitted by the jobs bounded context.
const (
	EventJobPostingCreated      = "JobPostingCreated"
	EventJobPostingUpdated      = "JobPostingUpdated"
	EventJobCompensationUpdated = "JobCompensationUpdated"
	EventJobPostingPublished    = "JobPostingPublished"
	EventJobPostingClosed       = "JobPostingClosed"
	EventJobPostingFilled       = "JobPostingFilled"
	EventJobPostingCancelled    = "JobPostingCancelled"
	EventJobPostingExpired      = "JobPostingExpired"

	EventApplicationSubmitted = "ApplicationSubmitted"
	EventApplicationUpdated   = "ApplicationUpdated"
	EventApplicationReviewed  = "ApplicationReviewed"
	EventInterviewScheduled   = "InterviewScheduled"
	EventInterviewCompleted   = "InterviewCompleted"
	EventApplicationAccepted  = "ApplicationAccepted"
	EventApplicationRejected  = "ApplicationRejected"
	EventApplicationWithdrawn = "ApplicationWithdrawn"
)

// Event is the envelope handed to the notification collaborator.
type Event struct {
	Type        string         `json:"type"`
	Payload     map[string]any `json:"payload"`
	AggregateID string         `json:"aggregateId"`
	OccurredAt  time.Time      `json:"occurredAt"`
	ContextName string         `json:"contextName"`
}

// NewEvent builds an event envelope stamped with the jobs context.
func NewEvent(eventType, aggregateID string, payload map[string]any) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		Type:        eventType,
		Payload:     payload,
		AggregateID: aggregateID,
		OccurredAt:  time.Now(),
		ContextName: ContextName,
	}
}

// EventPublisher delivers drained aggregate events to the messaging
// sink. Implementations live outside the domain layer.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
