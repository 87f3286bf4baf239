package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotificationType distinguishes the two event sources feeding the inbox.
type NotificationType string

const (
	NotificationInterviewScheduled NotificationType = "interview_scheduled"
	NotificationStatusUpdate       NotificationType = "status_update"
)

func (t NotificationType) String() string { return string(t) }

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationInterviewScheduled, NotificationStatusUpdate:
		return true
	}
	return false
}

// Priority represents the inbox display priority.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) String() string { return string(p) }

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func ParsePriorityFromString(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: invalid priority %q", ErrValidation, s)
	}
	return p, nil
}

// RelatedKind names the entity a notification links back to.
type RelatedKind string

const (
	RelatedApplication RelatedKind = "application"
	RelatedInterview   RelatedKind = "interview"
)

// Notification is one entry in a recipient's inbox. Append-only except for
// the read flag, which only ever moves false→true.
type Notification struct {
	ID          string
	Recipient   string
	Type        NotificationType
	Title       string
	Message     string
	Priority    Priority
	Read        bool
	RelatedKind RelatedKind
	RelatedID   string
	ActionHint  string
	CreatedAt   time.Time
}

func (n *Notification) Validate() error {
	ve := NewValidationError()
	if strings.TrimSpace(n.Recipient) == "" {
		ve.Add("recipient", "required")
	}
	if !n.Type.IsValid() {
		ve.Add("type", fmt.Sprintf("invalid notification type %q", n.Type))
	}
	if strings.TrimSpace(n.Title) == "" {
		ve.Add("title", "required")
	}
	if !n.Priority.IsValid() {
		ve.Add("priority", fmt.Sprintf("invalid priority %q", n.Priority))
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}
