package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names a change to the records
type EventType string

const (
	StudentCreated  EventType = "student.created"
	StudentUpdated  EventType = "student.updated"
	StudentDeleted  EventType = "student.deleted"
	ProctorAssigned EventType = "proctor.assigned"

	ProfessorCreated EventType = "professor.created"
	ProfessorUpdated EventType = "professor.updated"
	ProfessorDeleted EventType = "professor.deleted"

	LibraryMembershipCreated EventType = "library_membership.created"
	LibraryMembershipUpdated EventType = "library_membership.updated"
	LibraryMembershipDeleted EventType = "library_membership.deleted"
)

const (
	eventSource  = "campus-records-service"
	eventVersion = "1.0"
)

// Event is the envelope published for every committed change
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func NewEvent(eventType EventType, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes record change events
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
