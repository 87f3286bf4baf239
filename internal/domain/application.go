package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a job application.
type Status string

const (
	StatusPending               Status = "pending"
	StatusReviewed              Status = "reviewed"
	StatusShortlisted           Status = "shortlisted"
	StatusScheduledForInterview Status = "scheduled_for_interview"
	StatusInterviewed           Status = "interviewed"
	StatusRejected              Status = "rejected"
	StatusHired                 Status = "hired"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusShortlisted, StatusScheduledForInterview,
		StatusInterviewed, StatusRejected, StatusHired:
		return true
	}
	return false
}

// IsTerminal reports whether the status has no outgoing edges.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusHired
}

func ParseStatusFromString(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// legalEdges is the directed edge table of the application state machine.
// Statuses absent from the map are terminal.
var legalEdges = map[Status][]Status{
	StatusPending:               {StatusReviewed, StatusShortlisted, StatusRejected},
	StatusReviewed:              {StatusShortlisted, StatusRejected},
	StatusShortlisted:           {StatusScheduledForInterview, StatusHired, StatusRejected},
	StatusScheduledForInterview: {StatusInterviewed, StatusRejected},
	StatusInterviewed:           {StatusHired, StatusRejected},
}

// CanTransitionTo reports whether target is a legal edge out of s. A
// transition to the current status is never legal.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range legalEdges[s] {
		if next == target {
			return true
		}
	}
	return false
}

// LegalTargets returns the outgoing edges of s in declaration order.
func (s Status) LegalTargets() []Status {
	edges := legalEdges[s]
	targets := make([]Status, len(edges))
	copy(targets, edges)
	return targets
}

// Role identifies the acting party on a service call. Authorization happens
// upstream; the role is carried for audit logging only.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// Actor is the authenticated caller, passed explicitly on every service call.
type Actor struct {
	ID   string
	Role Role
}

// Application tracks a candidate's request to be considered for a job.
type Application struct {
	ID          string
	JobID       string
	CandidateID string
	Status      Status
	Notes       string
	Version     int64
	AppliedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Application) Validate() error {
	ve := NewValidationError()
	if strings.TrimSpace(a.JobID) == "" {
		ve.Add("jobId", "required")
	}
	if strings.TrimSpace(a.CandidateID) == "" {
		ve.Add("candidateId", "required")
	}
	if !a.Status.IsValid() {
		ve.Add("status", fmt.Sprintf("invalid status %q", a.Status))
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// StatusChange captures the old→new pair of a performed transition so the
// dispatcher can pick the matching notification template.
type StatusChange struct {
	From Status
	To   Status
}

// Transition validates the requested edge and returns a copy of app moved to
// target. It is pure: persistence and event emission are the caller's job.
func Transition(app Application, target Status) (Application, StatusChange, error) {
	if !target.IsValid() {
		return Application{}, StatusChange{}, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, target)
	}
	if !app.Status.CanTransitionTo(target) {
		return Application{}, StatusChange{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, app.Status, target)
	}

	next := app
	next.Status = target

	return next, StatusChange{From: app.Status, To: target}, nil
}
