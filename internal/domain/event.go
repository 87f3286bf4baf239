package domain

import (
	"fmt"
	"time"
)

// EventKind identifies what produced a domain event.
type EventKind string

const (
	EventStatusChanged      EventKind = "status_changed"
	EventInterviewScheduled EventKind = "interview_scheduled"
)

func (k EventKind) IsValid() bool {
	switch k {
	case EventStatusChanged, EventInterviewScheduled:
		return true
	}
	return false
}

// Event is emitted after a committed transition or scheduling action and
// consumed by the notification dispatcher.
type Event struct {
	Kind        EventKind
	Application Application
	Change      StatusChange
	Interview   *Interview
	OccurredAt  time.Time
}

func (e Event) Validate() error {
	if !e.Kind.IsValid() {
		return fmt.Errorf("%w: invalid event kind %q", ErrValidation, e.Kind)
	}
	if e.Application.ID == "" {
		return fmt.Errorf("%w: event application id is required", ErrValidation)
	}
	if e.Kind == EventInterviewScheduled && e.Interview == nil {
		return fmt.Errorf("%w: interview_scheduled event requires an interview", ErrValidation)
	}
	if e.Kind == EventStatusChanged && !e.Change.To.IsValid() {
		return fmt.Errorf("%w: status_changed event requires a target status", ErrValidation)
	}
	return nil
}
