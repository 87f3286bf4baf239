package queue

import (
	"fmt"
	"strings"
)

// OutboundMessage is the broker payload for interview invite and reminder
// delivery. It carries identifiers only; the worker re-reads current state.
type OutboundMessage struct {
	Kind          MessageKind `json:"kind"`
	InterviewID   string      `json:"interviewId"`
	ApplicationID string      `json:"applicationId"`
	Recipient     string      `json:"recipient"`
	CorrelationID string      `json:"correlationId,omitempty"`
}

func (m OutboundMessage) Validate() error {
	if !m.Kind.IsValid() {
		return fmt.Errorf("invalid message kind %q", m.Kind)
	}
	if strings.TrimSpace(m.InterviewID) == "" {
		return fmt.Errorf("interviewId is required")
	}
	if strings.TrimSpace(m.ApplicationID) == "" {
		return fmt.Errorf("applicationId is required")
	}
	if strings.TrimSpace(m.Recipient) == "" {
		return fmt.Errorf("recipient is required")
	}
	return nil
}
