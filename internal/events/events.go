package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	PollCreated           EventType = "poll.created"
	PollStatusChanged     EventType = "poll.status_changed"
	PollResponseSubmitted EventType = "poll.response_submitted"
	SimplePollSubmitted   EventType = "simple_poll.submitted"
	PostCommented         EventType = "post.commented"
	TicketCreated         EventType = "ticket.created"
	TicketReplied         EventType = "ticket.replied"
	TicketStatusChanged   EventType = "ticket.status_changed"
	UserRegistered        EventType = "user.registered"
)

const (
	eventSource  = "darab-cms"
	eventVersion = "1.0"
)

// Event is the envelope published for every domain event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// NewEvent stamps a new event with id, source and time
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

// EventPublisher publishes domain events to the message bus
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// PublishObserver is notified of each publish outcome; metrics implement it
type PublishObserver interface {
	ObservePublish(eventType string, err error)
}
